// Package upstream builds Azure OpenAI URLs and forwards request bodies to
// them.
//
// Two routes are served. Deployment-scoped routes put the deployment name in
// the path and use the classic dated api-version; v1 routes do not use a
// deployment and use the v1 api-version:
//
//	/v1/chat/completions -> {base}/openai/deployments/{deployment}/chat/completions?api-version={api_version}
//	/v1/responses        -> {base}/openai/v1/responses?api-version={v1_api_version}
//
// Forwarder issues exactly one POST per call and never retries. Any response
// the upstream returns, whatever its status, comes back as a Response; only
// the absence of a response is an error.
package upstream
