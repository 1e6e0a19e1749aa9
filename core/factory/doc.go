// Package factory builds pluggable modules (estimators, metrics sinks) from
// a {type, conf} pair. Each module family owns a Registry; factories decode
// conf with Decode.
//
//	reg := factory.NewRegistry[estimator.Estimator]("estimator")
//	_ = reg.Register("constant", func(conf map[string]any) (estimator.Estimator, error) {
//	    var c struct{ Loss float64 `json:"loss"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return estimator.Constant{Loss: c.Loss}, nil
//	})
//	e, err := reg.Create(factory.ModuleConfig{Type: "constant", Conf: map[string]any{"loss": 1e-4}})
package factory
