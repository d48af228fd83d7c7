package gateway

// Messenger is a communication front-end (Telegram, Discord, terminal).
// Gateways translate transport-specific chatter into Brain.Think calls and
// push outbound text back; everything else — planning, authorization,
// execution — happens behind the Brain.
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
