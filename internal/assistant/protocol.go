// Package assistant implements the Assistant Client (spec.md §4.6): a
// synchronous request-reply protocol over a Unix domain socket, with a
// liveness probe prefixing every real request and per-call timeouts.
package assistant

import "encoding/json"

// requestEnvelope is the tagged-union wire shape for every real request,
// grounded on original_source/llmsh/src/messages.rs's `#[serde(tag =
// "type")]` enum, expanded to the four request kinds spec.md §6 names.
type requestEnvelope struct {
	Type string `json:"type"`

	// Setup
	User       string `json:"user,omitempty"`
	APIVersion string `json:"api_version,omitempty"`

	// GenerateCommand / SaveContext / Exit
	SessionID string `json:"session_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`

	// SaveContext
	ContextType string `json:"context_type,omitempty"`
	Context     string `json:"context,omitempty"`
}

// responseEnvelope is the tagged-union reply shape; exactly one of the
// per-kind fields is populated depending on Status.
type responseEnvelope struct {
	Status string `json:"status"`

	// SetupSuccess
	SessionID string `json:"session_id,omitempty"`
	MOTD      string `json:"motd,omitempty"`

	// CommandResponse
	FullResponse string   `json:"full_response,omitempty"`
	Commands     []string `json:"commands,omitempty"`
}

const (
	typeSetup           = "Setup"
	typeGenerateCommand = "GenerateCommand"
	typeSaveContext     = "SaveContext"
	typeExit            = "Exit"
)

const (
	statusSetupSuccess    = "SetupSuccess"
	statusCommandResponse = "CommandResponse"
	statusSuccess         = "Success"
	statusError           = "Error"
	statusAck             = "Ack"
	statusBusy            = "Busy"
)

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
