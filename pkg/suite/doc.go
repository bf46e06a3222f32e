// Package suite defines literate REST test suites and loads them from YAML
// or JSON files.
//
// A suite file looks like:
//
//	name: Samples
//	baseUrl: ${SAMPLES_URL:-http://localhost:8000/api}
//	cases:
//	  - name: CreateSampleInLuna
//	    description: |
//	      To create a sample in Luna, you will need the following information:
//
//	        - The brand name of the sample.
//	        - The supplier of the sample.
//	    method: POST
//	    url: /samples
//	    data: {brand_name: Pennzoil, supplier: Acme Co.}
//	    expect:
//	      status: 201
//	      body: {brand_name: Pennzoil}
//
// The same Case drives both the HTTP check (package runner) and the
// markdown output (package document), so request shape helpers such as
// RequestURL, Body and RequestHeaders live here.
package suite
