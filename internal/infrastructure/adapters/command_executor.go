package adapters

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
)

var (
	permissionDeniedPattern = regexp.MustCompile(`(?i)operation not permitted|permission denied`)
	// ethtool: "No such device", "Cannot get device settings: No such device"
	// tc/ip:   "Cannot find device \"eth9\"", "Device \"eth9\" does not exist."
	interfaceMissingPattern = regexp.MustCompile(`(?i)no such device|cannot find device|device "?[^"\s]*"? does not exist`)
	// sysctl -w: "setting key ...: Invalid argument", ethtool -G: "Numerical result out of range"
	valueRejectedPattern    = regexp.MustCompile(`(?i)invalid argument|numerical result out of range|result too large|value out of range`)
)

// RealCommandExecutor is a CommandExecutor implementation that executes actual system commands
type RealCommandExecutor struct{}

// NewRealCommandExecutor creates a new RealCommandExecutor
func NewRealCommandExecutor() interfaces.CommandExecutor {
	return &RealCommandExecutor{}
}

// Execute executes a command and returns its stdout.
// Failures are classified into TOOL_NOT_FOUND, PERMISSION_DENIED, INTERFACE_NOT_FOUND, VALUE_REJECTED or SYSTEM.
func (e *RealCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, ClassifyCommandError(command, args, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// ExecuteWithTimeout executes a command with timeout
func (e *RealCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := e.Execute(ctx, command, args...)
	if err != nil {
		// Convert to timeout error when context deadline exceeded
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError(
				fmt.Sprintf("command execution timeout: %s %v (timeout: %v)", command, args, timeout),
			)
		}
		return nil, err
	}

	return output, nil
}

// ClassifyCommandError maps an exec failure and its stderr text to a DomainError
func ClassifyCommandError(command string, args []string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	cause := err
	if stderr != "" {
		cause = fmt.Errorf("%w, stderr: %s", err, stderr)
	}

	if stderrors.Is(err, exec.ErrNotFound) {
		return errors.NewToolNotFoundError(command, err)
	}

	switch {
	case interfaceMissingPattern.MatchString(stderr):
		return errors.NewInterfaceNotFoundError(interfaceArg(args), cause)
	case permissionDeniedPattern.MatchString(stderr):
		return errors.NewPermissionDeniedError(
			fmt.Sprintf("permission denied: %s %s", command, strings.Join(args, " ")),
			cause,
		)
	case valueRejectedPattern.MatchString(stderr):
		return errors.NewValueRejectedError(
			fmt.Sprintf("value rejected: %s %s", command, strings.Join(args, " ")),
			cause,
		)
	}

	return errors.NewSystemError(
		fmt.Sprintf("command execution failed: %s %v", command, args),
		cause,
	)
}

// interfaceArg guesses the interface operand from ethtool/tc/ip argument lists
func interfaceArg(args []string) string {
	for i, a := range args {
		if a == "dev" && i+1 < len(args) {
			return args[i+1]
		}
	}
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
