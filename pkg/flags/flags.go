package flags

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Storage backend options
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Cart backend options
const (
	CartMemory = "memory"
	CartRedis  = "redis"
)

// Config holds all command-line configuration
type Config struct {
	Port        string
	Storage     string
	CartBackend string
	Help        bool
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Port:        "8080",
		Storage:     StoragePostgres,
		CartBackend: CartMemory,
		Help:        false,
	}
}

// Parse parses command-line flags and returns configuration
func Parse() Config {
	config := DefaultConfig()

	var (
		port        = flag.String("port", config.Port, "Port number")
		storage     = flag.String("storage", config.Storage, "Storage backend (postgres|memory)")
		cartBackend = flag.String("cart-backend", config.CartBackend, "Cart session store (memory|redis)")
		help        = flag.Bool("help", false, "Show this screen")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Cafe Management Ordering Platform\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  cafe-management [--port <N>] [--storage <backend>] [--cart-backend <backend>]\n")
		fmt.Fprintf(os.Stderr, "  cafe-management --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --help                Show this screen.\n")
		fmt.Fprintf(os.Stderr, "  --port N              Port number (1-65535).\n")
		fmt.Fprintf(os.Stderr, "  --storage BACKEND     Storage backend: postgres (default) or memory.\n")
		fmt.Fprintf(os.Stderr, "  --cart-backend STORE  Cart session store: memory (default) or redis.\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	parsed := Config{
		Port:        *port,
		Storage:     *storage,
		CartBackend: *cartBackend,
		Help:        *help,
	}

	if err := parsed.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return parsed
}

// Validate validates the parsed configuration
func (c Config) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}

	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("invalid storage backend '%s': must be postgres or memory", c.Storage)
	}

	if c.CartBackend != CartMemory && c.CartBackend != CartRedis {
		return fmt.Errorf("invalid cart backend '%s': must be memory or redis", c.CartBackend)
	}

	return nil
}

// validatePort validates the port number
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port number '%s': must be a number", port)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port number %d is out of range: must be between 1 and 65535", portNum)
	}

	if portNum < 1024 {
		fmt.Fprintf(os.Stderr, "Warning: Port %d is a privileged port (1-1023). You may need administrator privileges.\n", portNum)
	}

	return nil
}
