// Package wifi brings up the Wi-Fi interface the bridge relays traffic
// over. On the embedded Linux targets this bridge runs on, association is
// handled by wpa_supplicant/NetworkManager; this package only waits for
// the interface to report it, mirroring the original firmware's use of an
// external collaborator that supplies nothing but a network-is-up signal.
package wifi

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Associator blocks until the named interface reports that it is
// associated, or the context is cancelled.
type Associator interface {
	WaitForAssociation(ctx context.Context, iface string) error
}

// SysfsAssociator polls /sys/class/net/<iface>/operstate, the same signal
// `ip link show` surfaces, until the kernel reports the link "up".
type SysfsAssociator struct {
	PollInterval time.Duration
	Log          *logrus.Logger
}

// NewSysfsAssociator returns an Associator with sensible defaults.
func NewSysfsAssociator(log *logrus.Logger) *SysfsAssociator {
	return &SysfsAssociator{PollInterval: 500 * time.Millisecond, Log: log}
}

func (a *SysfsAssociator) WaitForAssociation(ctx context.Context, iface string) error {
	interval := a.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	path := fmt.Sprintf("/sys/class/net/%s/operstate", iface)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := readOperState(path)
		if err == nil && state == "up" {
			if a.Log != nil {
				a.Log.WithField("interface", iface).Info("wifi associated")
			}
			return nil
		}
		if a.Log != nil {
			a.Log.WithFields(logrus.Fields{"interface": iface, "state": state}).Debug("waiting for wifi association")
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wifi: waiting for %s: %w", iface, ctx.Err())
		case <-ticker.C:
		}
	}
}

func readOperState(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
