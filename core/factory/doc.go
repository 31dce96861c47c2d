// Package factory instantiates pluggable modules from configuration. A module
// is described by a type name and a map of raw settings; the registered
// factory decodes the settings into its own typed struct.
//
// Search algorithms and metric sinks are both created this way:
//
//	reg := factory.NewRegistry[search.Algorithm]()
//	_ = reg.Register("greedy", func(conf map[string]any) (search.Algorithm, error) {
//	    var c search.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return search.NewGreedy(c), nil
//	})
//	alg, err := reg.Create(factory.ModuleConfig{Type: "greedy"})
package factory
