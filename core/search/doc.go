// Package search implements the planning strategies: a one-shot greedy
// constructor, hill climbing, genetic search and an incremental genetic
// search that replans release by release while keeping already committed
// tasks in place.
//
// Every strategy scores candidates with fitness.Evaluator and draws its
// randomness from a single seeded *rand.Rand, so a run is reproducible from
// its Config.Seed.
//
//	alg, err := search.New(search.Config{Algorithm: "genetic", Seed: 42})
//	if err != nil {
//	    return err
//	}
//	res, err := alg.Search(ctx, search.Problem{Graph: g, Releases: cal, Workers: roster})
package search
