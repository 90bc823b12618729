package payment

// Gateway disburses funds held by the engine to external recipients. A transfer
// hands control to the recipient, which may include arbitrary untrusted code.
type Gateway interface {
	Transfer(to string, amount uint64) error
}
