package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "prevplan/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePlanID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "plan_id is required", dErrors.Message(err))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePlanID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "plan_id must be a valid UUID", dErrors.Message(err))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePlanID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParsePlanID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PlanID(validUUID), id)
		assert.Equal(t, validUUID.String(), id.String())
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	planID := NewPlanID()
	productID := NewProductID()

	// These would fail to compile if types were interchangeable:
	// var _ PlanID = productID   // compile error
	// var _ ProductID = planID   // compile error

	assert.NotEqual(t, uuid.UUID(planID), uuid.UUID(productID))
	assert.False(t, planID.IsNil())
	assert.True(t, PlanID{}.IsNil())
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE plan;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRescueID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types have identical parsing behavior.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errClient := ParseClientID(validUUID)
		_, errProduct := ParseProductID(validUUID)
		_, errPlan := ParsePlanID(validUUID)
		_, errContribution := ParseContributionID(validUUID)
		_, errRescue := ParseRescueID(validUUID)

		require.NoError(t, errClient)
		require.NoError(t, errProduct)
		require.NoError(t, errPlan)
		require.NoError(t, errContribution)
		require.NoError(t, errRescue)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errClient := ParseClientID(input)
			_, errProduct := ParseProductID(input)
			_, errPlan := ParsePlanID(input)
			_, errContribution := ParseContributionID(input)
			_, errRescue := ParseRescueID(input)

			require.Error(t, errClient)
			require.Error(t, errProduct)
			require.Error(t, errPlan)
			require.Error(t, errContribution)
			require.Error(t, errRescue)
		})
	}
}

func TestIDJSONEncoding(t *testing.T) {
	raw := uuid.New()
	b, err := json.Marshal(struct {
		ID ClientID `json:"id"`
	}{ID: ClientID(raw)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+raw.String()+`"}`, string(b))

	var decoded struct {
		ID ClientID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, ClientID(raw), decoded.ID)

	err = json.Unmarshal([]byte(`{"id":"nope"}`), &decoded)
	require.Error(t, err)
}
