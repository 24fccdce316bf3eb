package nxtvk

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// ErrStructural marks a caller defect: data handed to the backend that its
// producers should never have let through (unknown command, unsupported
// binding kind, a render pass with more than one subpass, ...).
var ErrStructural = errors.New("structural violation")

// ErrNativeExhausted marks a native allocation failure (descriptor pool
// creation, descriptor set allocation). Unlike ErrStructural it reflects the
// environment, not the caller.
var ErrNativeExhausted = errors.New("native resource exhaustion")

// FatalHandler receives errors of both fatal classes. The default handler
// never returns. A handler that does return makes the failing operation
// abort and hand the error back to its caller.
type FatalHandler func(err error)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a native result into an error annotated with the caller.
// Returns nil on vk.Success.
func NewError(ret vk.Result) error {
	if ret != vk.Success {
		pc, _, _, ok := runtime.Caller(1)
		if !ok {
			return fmt.Errorf("%w (%d)", vk.Error(ret), ret)
		}
		return fmt.Errorf("%w (%d) on %s", vk.Error(ret), ret, callerName(pc))
	}
	return nil
}

func callerName(pc uintptr) string {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	file, line := fn.FileLine(pc)
	return fmt.Sprintf("%s (%s:%d)", fn.Name(), file, line)
}

func structuralf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}

func exhausted(what string, ret vk.Result) error {
	return fmt.Errorf("%w: %s: %w", ErrNativeExhausted, what, NewError(ret))
}

// Fatal writes err to the fatal log at path and terminates the process.
// Finalizers run first, in order. A nil err is a no-op.
func Fatal(path string, err error, finalizers ...func()) {
	if err != nil {
		for _, fn := range finalizers {
			fn()
		}

		file, ferr := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if ferr != nil {
			log.Fatal(err)
		}
		fatal_log := log.New(file, "FATAL: ", log.Ldate|log.Ltime|log.Lshortfile)
		fatal_log.Fatal(err)
	}
}

// newFatalHandler returns the process-terminating handler used when a device
// is created without one.
func newFatalHandler(path string) FatalHandler {
	return func(err error) {
		Logger().Error("nxtvk: fatal", "err", err, "log", path)
		Fatal(path, err)
	}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}
