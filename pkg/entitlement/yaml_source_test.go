package entitlement_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotaguard/pkg/entitlement"
)

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("full catalog", func(t *testing.T) {
		t.Parallel()

		doc := `
plans:
  free:
    name: Free
    default: true
    features:
      api: true
      sso: false
    limits:
      projects:
        amount: 3
        policy: block_usage
      emails:
        amount: 100
        policy: just_warn
        warn_thresholds: [0.8, 0.95]
        period:
          kind: billing_cycle
  pro:
    name: Pro
    limits:
      projects:
        amount: unlimited
        policy: just_warn
      storage:
        amount: 50
        policy: grace_then_block
        grace_period: 168h
      active_members:
        amount: 10
        policy: block_usage
        scope:
          named: active
`
		src := entitlement.NewYAMLSource(strings.NewReader(doc))
		catalog, err := entitlement.NewCatalog(context.Background(), src)
		require.NoError(t, err)

		free, err := catalog.Plan("free")
		require.NoError(t, err)
		assert.Equal(t, "Free", free.Name)
		assert.True(t, free.Default)
		assert.True(t, free.HasFeature("api"))

		projects, ok := free.Limit("projects")
		require.True(t, ok)
		assert.EqualValues(t, 3, projects.Amount)
		assert.Equal(t, entitlement.BlockUsage, projects.Policy)
		assert.False(t, projects.IsPeriodic())

		emails, ok := free.Limit("emails")
		require.True(t, ok)
		require.True(t, emails.IsPeriodic())
		assert.Equal(t, entitlement.PeriodBillingCycle, emails.Period.Kind)
		assert.Equal(t, []float64{0.8, 0.95}, emails.WarnThresholds)

		pro, err := catalog.Plan("pro")
		require.NoError(t, err)

		unlimited, ok := pro.Limit("projects")
		require.True(t, ok)
		assert.True(t, unlimited.IsUnlimited())

		storage, ok := pro.Limit("storage")
		require.True(t, ok)
		assert.Equal(t, entitlement.GraceThenBlock, storage.Policy)
		assert.Equal(t, 7*24*time.Hour, storage.GracePeriod)

		scoped, ok := pro.Limit("active_members")
		require.True(t, ok)
		require.NotNil(t, scoped.Scope)
		parts := scoped.Scope.Parts()
		require.Len(t, parts, 1)
		assert.Equal(t, "active", parts[0].Name)
	})

	t.Run("rejects bad amount", func(t *testing.T) {
		t.Parallel()

		doc := `
plans:
  free:
    limits:
      projects:
        amount: lots
        policy: block_usage
`
		src := entitlement.NewYAMLSource(strings.NewReader(doc))
		_, err := src.Load(context.Background())
		require.Error(t, err)
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		t.Parallel()

		src := entitlement.NewYAMLSource(strings.NewReader("plans: {}"))
		_, err := src.Load(context.Background())
		require.Error(t, err)
	})

	t.Run("rejects empty scope", func(t *testing.T) {
		t.Parallel()

		doc := `
plans:
  free:
    limits:
      projects:
        amount: 3
        policy: block_usage
        scope: {}
`
		src := entitlement.NewYAMLSource(strings.NewReader(doc))
		_, err := src.Load(context.Background())
		require.Error(t, err)
	})
}
