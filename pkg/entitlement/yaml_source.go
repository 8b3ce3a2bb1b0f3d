package entitlement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlSource loads a plan catalog from a YAML document. Custom window funcs
// and predicate scopes cannot be expressed in YAML; catalogs needing those are
// assembled in code with NewInMemSource.
//
// Catalog format:
//
//	plans:
//	  free:
//	    name: Free
//	    default: true
//	    features:
//	      api: true
//	    limits:
//	      projects:
//	        amount: 3
//	        policy: block_usage
//	      emails:
//	        amount: 100
//	        policy: just_warn
//	        warn_thresholds: [0.8, 0.95]
//	        period:
//	          kind: billing_cycle
//	      exports:
//	        amount: unlimited
//	        policy: just_warn
type yamlSource struct {
	r io.Reader
}

// NewYAMLSource returns a Source parsing the YAML plan catalog read from r.
func NewYAMLSource(r io.Reader) Source {
	return &yamlSource{r: r}
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.New("plan catalog defines no plans")
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for key, yp := range doc.Plans {
		plan, err := yp.toPlan(key)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", key, err)
		}
		plans[key] = plan
	}
	return plans, nil
}

type yamlCatalog struct {
	Plans map[string]yamlPlan `yaml:"plans"`
}

type yamlPlan struct {
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Default     bool                      `yaml:"default"`
	Features    map[Feature]bool          `yaml:"features"`
	Limits      map[LimitKey]yamlLimitCfg `yaml:"limits"`
}

type yamlLimitCfg struct {
	Amount         yamlAmount       `yaml:"amount"`
	Policy         AfterLimitPolicy `yaml:"policy"`
	GracePeriod    time.Duration    `yaml:"grace_period"`
	WarnThresholds []float64        `yaml:"warn_thresholds"`
	Period         *yamlPeriod      `yaml:"period"`
	Scope          *yamlScope       `yaml:"scope"`
}

type yamlPeriod struct {
	Kind  PeriodKind    `yaml:"kind"`
	Every time.Duration `yaml:"every"`
}

type yamlScope struct {
	Named string         `yaml:"named"`
	Where map[string]any `yaml:"where"`
}

// yamlAmount accepts either a non-negative integer or the string "unlimited".
type yamlAmount int64

func (a *yamlAmount) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil && s == "unlimited" {
		*a = yamlAmount(Unlimited)
		return nil
	}
	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("amount must be a non-negative integer or \"unlimited\", got %q", node.Value)
	}
	*a = yamlAmount(n)
	return nil
}

func (yp yamlPlan) toPlan(key string) (Plan, error) {
	plan := Plan{
		Key:         key,
		Name:        yp.Name,
		Description: yp.Description,
		Default:     yp.Default,
		Features:    yp.Features,
		Limits:      make(map[LimitKey]LimitConfig, len(yp.Limits)),
	}
	for lk, yc := range yp.Limits {
		cfg := LimitConfig{
			Amount:         int64(yc.Amount),
			Policy:         yc.Policy,
			GracePeriod:    yc.GracePeriod,
			WarnThresholds: yc.WarnThresholds,
		}
		if yc.Period != nil {
			cfg.Period = &PeriodSpec{Kind: yc.Period.Kind, Duration: yc.Period.Every}
		}
		if yc.Scope != nil {
			switch {
			case yc.Scope.Named != "" && yc.Scope.Where != nil:
				cfg.Scope = Compose(Named(yc.Scope.Named), Where(yc.Scope.Where))
			case yc.Scope.Named != "":
				cfg.Scope = Named(yc.Scope.Named)
			case yc.Scope.Where != nil:
				cfg.Scope = Where(yc.Scope.Where)
			default:
				return Plan{}, fmt.Errorf("limit %q: scope must set named or where", lk)
			}
		}
		plan.Limits[lk] = cfg
	}
	return plan, nil
}
