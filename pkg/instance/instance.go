package instance

import "os"

// GetID returns the process identifier attached to logs and forwarded events.
func GetID() string {
	for _, key := range []string{"CHARMCART_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
