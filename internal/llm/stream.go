package llm

// StreamingIfAllowed runs fn with the client's streaming flag temporarily
// overridden. The effective value is allowed && desired, where allowed is
// the deployment-wide streaming switch from configuration. The previous
// flag is restored on every exit path, including when fn fails.
func StreamingIfAllowed(c Client, allowed, desired bool, fn func() error) error {
	prev := c.SetStream(allowed && desired)
	defer c.SetStream(prev)
	return fn()
}
