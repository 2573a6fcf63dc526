package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
)

// Spawner запускает функцию асинхронно. Сервисы принимают его, чтобы тесты могли
// подменить фоновый запуск синхронным.
type Spawner func(fn func())

// PanicHook вызывается с перехваченным значением и стеком.
type PanicHook func(recovered any, stack []byte)

// OnPanic по умолчанию пишет panic в лог. Тесты подменяют его.
var OnPanic PanicHook = logPanic

func logPanic(recovered any, stack []byte) {
	logger.Log.WithField("component", "goroutine").
		WithField("panic", recovered).
		Errorf("panic в горутине\n%s", stack)
}

// Inline выполняет fn в текущей горутине. Panic не уходит выше: она
// учитывается в метриках и передаётся OnPanic.
func Inline(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecoveredPanic()
			if hook := OnPanic; hook != nil {
				hook(r, debug.Stack())
			}
		}
	}()
	fn()
}

// SafeGo запускает fn в новой горутине с перехватом panic.
func SafeGo(fn func()) {
	go Inline(fn)
}

// SafeGoWithContext - SafeGo для функций, ожидающих ctx.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go Inline(func() { fn(ctx) })
}
