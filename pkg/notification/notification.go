// Package notification defines the outbound notification capability. The
// concrete sender is chosen once at startup by the initializer; nothing
// selects an implementation at runtime.
package notification

import (
	"context"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
)

// Sender delivers a receipt after a successful immediate withdrawal. It is
// invoked by the request handler, never by the domain service, and never for
// scheduled executions or failures.
type Sender interface {
	SendWithdrawReceipt(ctx context.Context, pix domain.PixKey, amount money.Money, when time.Time) error
}
