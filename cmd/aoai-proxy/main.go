// aoai-proxy is an authenticating reverse proxy for Azure OpenAI.
//
// It accepts POST requests on /v1/chat/completions and /v1/responses,
// attaches an Entra ID bearer token obtained through DefaultAzureCredential,
// forwards the unmodified body to the configured Azure OpenAI resource and
// relays the upstream status, body and content-type back to the caller.
//
// Usage:
//
//	# Start from environment variables alone
//	AZURE_OPENAI_BASE=https://my-resource.openai.azure.com \
//	AZURE_OPENAI_DEPLOYMENT=gpt-4o \
//	aoai-proxy run
//
//	# Start with a configuration file and reload it on change
//	aoai-proxy run --config /etc/aoai-proxy/config.yaml --watch
//
//	# Check configuration
//	aoai-proxy validate --config config.yaml
//
//	# Check that a token can be acquired
//	aoai-proxy token
package main

func main() {
	Execute()
}
