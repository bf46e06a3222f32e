// Package testing runs litrest suites from Go tests.
//
// # Running a suite
//
// Each case becomes a subtest named after the case:
//
//	func TestSamples(t *testing.T) {
//	    s, err := suite.Load("testdata/samples.yaml")
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    lrtesting.Run(t, s, runner.WithBaseURL(srv.URL))
//	}
//
// Case "CreateSampleInLuna" runs as subtest "test_create_sample_in_luna".
// Cases with a skip reason call t.Skip. Subtests share one HTTP client so
// a login case can authenticate the cases after it.
//
// # Stub servers
//
// When the API is not available, a StubServer answers with canned
// responses configured through a fluent builder:
//
//	stub := lrtesting.NewStubServer(t)
//	stub.Stub("POST", "/samples").
//	    WithStatus(201).
//	    WithJSON(map[string]any{"id": 7, "brand_name": "Pennzoil"}).
//	    Reply()
//
//	lrtesting.Run(t, s, runner.WithBaseURL(stub.URL()))
//	stub.AssertCalled(t, "POST", "/samples")
//
// For tests that should not open a socket at all, StaticDoer returns the
// same response for every request:
//
//	lrtesting.Run(t, s, runner.WithDoer(lrtesting.StaticDoer(200, `{"ok": true}`)))
//
// # Assertions
//
// AssertMatches and AssertJSONMatches apply the same structural subset
// match the runner uses and report the trail of the failing path.
package testing
