package network

import (
	"fmt"
	"path/filepath"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// SettingHandlerFactory is a registry that returns the tool adapter for each directive scope
type SettingHandlerFactory struct {
	handlers map[entities.Scope]interfaces.SettingHandler
	logger   *logrus.Logger
}

// NewSettingHandlerFactory creates a factory with the sysctl, ethtool and tc adapters
func NewSettingHandlerFactory(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	commandTimeout time.Duration,
	logger *logrus.Logger,
) *SettingHandlerFactory {
	f := &SettingHandlerFactory{
		handlers: make(map[entities.Scope]interfaces.SettingHandler),
		logger:   logger,
	}
	f.Register(NewSysctlAdapter(executor, commandTimeout, logger))
	f.Register(NewRingAdapter(executor, fs, commandTimeout, logger))
	f.Register(NewPauseAdapter(executor, fs, commandTimeout, logger))
	f.Register(NewPacingAdapter(executor, fs, commandTimeout, logger))
	return f
}

// Register adds or replaces the handler for its scope
func (f *SettingHandlerFactory) Register(handler interfaces.SettingHandler) {
	f.handlers[handler.Scope()] = handler
}

// HandlerFor returns the handler for the given scope
func (f *SettingHandlerFactory) HandlerFor(scope entities.Scope) (interfaces.SettingHandler, error) {
	handler, ok := f.handlers[scope]
	if !ok {
		return nil, errors.NewSystemError(fmt.Sprintf("no handler registered for scope %s", scope), nil)
	}

	f.logger.WithField("scope", scope).Debug("Setting handler selected")
	return handler, nil
}

// requireInterface returns INTERFACE_NOT_FOUND when /sys/class/net/IFACE is absent
func requireInterface(fs interfaces.FileSystem, iface string) error {
	if !fs.Exists(filepath.Join(constants.SysClassNet, iface)) {
		return errors.NewInterfaceNotFoundError(iface, nil)
	}
	return nil
}
