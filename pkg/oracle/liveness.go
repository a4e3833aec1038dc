package oracle

import (
	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

// PortLiveness tracks software and hardware port-down state and the
// backup port protecting each primary.
type PortLiveness struct {
	swDown        map[model.Port]struct{}
	hwDown        map[model.Port]struct{}
	backups       map[model.Port]model.Port
	backupEnabled bool
}

// NewPortLiveness returns a store with every port up and no backups.
func NewPortLiveness() *PortLiveness {
	l := &PortLiveness{}
	l.Reset()
	return l
}

// Reset brings every port up, forgets backups and disables protection.
func (l *PortLiveness) Reset() {
	l.swDown = make(map[model.Port]struct{})
	l.hwDown = make(map[model.Port]struct{})
	l.backups = make(map[model.Port]model.Port)
	l.backupEnabled = false
}

// SWPortDown marks port as down by software.
func (l *PortLiveness) SWPortDown(p model.Port) {
	l.swDown[p] = struct{}{}
	util.WithField("port", p).Debug("sw port down")
}

// SWPortUp clears the software down mark.
func (l *PortLiveness) SWPortUp(p model.Port) {
	delete(l.swDown, p)
	util.WithField("port", p).Debug("sw port up")
}

// HWPortDown marks port as down by hardware.
func (l *PortLiveness) HWPortDown(p model.Port) {
	l.hwDown[p] = struct{}{}
	util.WithField("port", p).Debug("hw port down")
}

// HWPortUp clears the hardware down mark.
func (l *PortLiveness) HWPortUp(p model.Port) {
	delete(l.hwDown, p)
	util.WithField("port", p).Debug("hw port up")
}

// SetBackupPort protects primary with backup.
func (l *PortLiveness) SetBackupPort(primary, backup model.Port) {
	l.backups[primary] = backup
	util.WithFields(map[string]interface{}{"port": primary, "backup": backup}).Debug("backup port set")
}

// ClearBackupPort removes the backup of primary.
func (l *PortLiveness) ClearBackupPort(primary model.Port) error {
	if _, ok := l.backups[primary]; !ok {
		return util.NewNotFoundError("backup for port", primary)
	}
	delete(l.backups, primary)
	return nil
}

// EnableBackupPorts turns on backup substitution.
func (l *PortLiveness) EnableBackupPorts() {
	l.backupEnabled = true
}

// DisableBackupPorts turns off backup substitution.
func (l *PortLiveness) DisableBackupPorts() {
	l.backupEnabled = false
}

// BackupsEnabled reports whether backup substitution is on.
func (l *PortLiveness) BackupsEnabled() bool {
	return l.backupEnabled
}

// IsSWDown reports the software down mark.
func (l *PortLiveness) IsSWDown(p model.Port) bool {
	_, ok := l.swDown[p]
	return ok
}

// IsHWDown reports the hardware down mark.
func (l *PortLiveness) IsHWDown(p model.Port) bool {
	_, ok := l.hwDown[p]
	return ok
}

// IsDown reports whether the port is down by software or hardware.
func (l *PortLiveness) IsDown(p model.Port) bool {
	return l.IsSWDown(p) || l.IsHWDown(p)
}

// IsLive is the negation of IsDown.
func (l *PortLiveness) IsLive(p model.Port) bool {
	return !l.IsDown(p)
}

// BackupOf returns the configured backup of p, or p itself when none is
// configured or protection is disabled.
func (l *PortLiveness) BackupOf(p model.Port) model.Port {
	if !l.backupEnabled {
		return p
	}
	if b, ok := l.backups[p]; ok {
		return b
	}
	return p
}

// Effective returns p when it is live and its backup otherwise.
func (l *PortLiveness) Effective(p model.Port) model.Port {
	if l.IsLive(p) {
		return p
	}
	return l.BackupOf(p)
}

// DownPorts returns every port that is down, sorted.
func (l *PortLiveness) DownPorts() []model.Port {
	ports := make([]model.Port, 0, len(l.swDown)+len(l.hwDown))
	for p := range l.swDown {
		ports = append(ports, p)
	}
	for p := range l.hwDown {
		ports = append(ports, p)
	}
	return model.PortSet(ports)
}
