package packager

import (
	"fmt"
	"os"
	"os/user"
)

// Actor identifies who produced a package and where, for the run report.
type Actor struct {
	// Hostname is the machine the package was built on.
	Hostname string
	// Username is the account the packager ran under.
	Username string
}

// DetectActor gathers host and user information for the packaging report.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
