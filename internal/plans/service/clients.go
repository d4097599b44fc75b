package service

import (
	"context"
	"strings"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
)

const (
	msgClientNotFound   = "client not found"
	msgEmailTaken       = "email already registered"
	msgClientReferenced = "client still has plans or extra contributions"
)

// CreateClient validates and stores a new client. Clients reference nothing,
// so the resolving stage is empty.
func (s *Service) CreateClient(ctx context.Context, fields models.ClientFields) (*models.Client, error) {
	ctx, m := s.begin(ctx, models.KindClient, models.ActionCreate)
	m.step(nil)
	m.step(nil)

	var client *models.Client
	err := s.validate(m, func() (err error) {
		client, err = s.engine.PrepareClient(fields)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Clients.CreateClient(ctx, client); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgClientNotFound, msgEmailTaken, "create client"))
	}
	return client, s.finish(ctx, m, client.ID.String(), nil)
}

// UpdateClient merges fields onto the stored client and re-validates.
func (s *Service) UpdateClient(ctx context.Context, clientID id.ClientID, fields models.ClientFields) (*models.Client, error) {
	ctx, m := s.begin(ctx, models.KindClient, models.ActionUpdate)
	m.step(nil)

	var existing *models.Client
	err := s.resolve(m, func() (err error) {
		existing, err = s.stores.Clients.FindClient(ctx, clientID)
		return storeErr(err, msgClientNotFound, msgEmailTaken, "load client")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var client *models.Client
	err = s.validate(m, func() (err error) {
		client, err = s.engine.PrepareClientUpdate(*existing, fields)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Clients.UpdateClient(ctx, client); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgClientNotFound, msgEmailTaken, "update client"))
	}
	return client, s.finish(ctx, m, client.ID.String(), nil)
}

// DeleteClient removes a client. No rule guards deletion; the store refuses
// while plans or extra contributions still reference the client.
func (s *Service) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	ctx, m := s.begin(ctx, models.KindClient, models.ActionDelete)
	err := s.stores.Clients.DeleteClient(ctx, clientID)
	return s.finish(ctx, m, clientID.String(), storeErr(err, msgClientNotFound, msgClientReferenced, "delete client"))
}

func (s *Service) GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	client, err := s.stores.Clients.FindClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, msgClientNotFound, msgEmailTaken, "load client")
	}
	return client, nil
}

// GetClientByEmail matches email case-insensitively.
func (s *Service) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	client, err := s.stores.Clients.FindClientByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, storeErr(err, msgClientNotFound, msgEmailTaken, "load client")
	}
	return client, nil
}

func (s *Service) ListClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.stores.Clients.ListClients(ctx)
	if err != nil {
		return nil, storeErr(err, msgClientNotFound, msgEmailTaken, "list clients")
	}
	return clients, nil
}
