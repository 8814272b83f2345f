package config

// NewClientForTest creates a Client config for testing purposes
func NewClientForTest(apiURL, wsURL, backend, profile string) *Client {
	return &Client{
		apiURL:  apiURL,
		wsURL:   wsURL,
		backend: backend,
		profile: profile,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// APIURL exposes the resolved API URL for testing
func (c *Client) APIURL() string {
	return c.apiURL
}

// ApplyProfileForTest runs profile resolution for testing
func (c *Client) ApplyProfileForTest() error {
	return c.applyProfile()
}
