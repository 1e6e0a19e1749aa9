package estimator

import "github.com/kilianp07/batlife/core/factory"

var registry = factory.NewRegistry[Estimator]("estimator")

func init() {
	_ = Register("constant", func(conf map[string]any) (Estimator, error) {
		var c Constant
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
	_ = Register("linear", func(conf map[string]any) (Estimator, error) {
		var c struct {
			Intercept float64   `json:"intercept"`
			Weights   []float64 `json:"weights"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewLinear(c.Intercept, c.Weights)
	})
	_ = Register("forest", func(conf map[string]any) (Estimator, error) {
		var c struct {
			Trees []Tree `json:"trees"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewForest(c.Trees)
	})
}

// Register adds an estimator factory identified by name.
func Register(name string, f factory.Factory[Estimator]) error {
	return registry.Register(name, f)
}

// New builds the estimator described by cfg.
func New(cfg factory.ModuleConfig) (Estimator, error) {
	return registry.Create(cfg)
}

// Types lists the registered estimator types.
func Types() []string { return registry.Names() }
