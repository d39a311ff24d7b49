// Package harness runs a fixture catalog against a compiler and decides the
// outcome of the whole run.
//
// # Run Policy
//
// Under FailFast (the default) the run stops scheduling fixtures as soon as
// one fails. Fixtures already running are allowed to finish and their
// results are reported. With Concurrency > 1 the fixture waiting for a free
// slot when the failure lands also runs, so the results always cover a
// contiguous prefix of the catalog and the not-run fixtures its tail.
//
// Under KeepGoing every fixture is evaluated so CI can triage all failures
// from one run.
//
// A compiler that cannot be launched aborts the run with an error and no
// report: that is a harness misconfiguration, not a fixture failure.
//
// # Ordering
//
// Results reach the Reporter in catalog order regardless of concurrency. With
// Concurrency > 1 a result is held back until every earlier fixture has been
// reported, so console output reads the same as a sequential run.
//
// # Usage
//
//	cases := fixture.Reference().Cases()
//	report, err := harness.Run(ctx, cases, harness.Options{
//	    Invoker:  &invoke.Command{Path: "./build/compiler"},
//	    Reporter: harness.NewTextReporter(os.Stdout),
//	})
//	if err != nil {
//	    log.Fatal(err) // launch failure
//	}
//	os.Exit(report.ExitCode())
package harness
