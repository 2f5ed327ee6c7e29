package tgclient

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gotd/td/tgerr"

	"github.com/nkarpov/telesync/internal/tg"
)

// mapErr folds MTProto errors into the client contract's sentinels so the
// engines can classify failures with errors.Is and no transport knowledge.
// Errors outside the taxonomy pass through unclassified.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case tgerr.IsCode(err, 420) || tgerr.Is(err, "FLOOD_WAIT"):
		return fmt.Errorf("%w: %s", tg.ErrRateLimited, err)
	case tgerr.Is(err,
		"USERNAME_NOT_OCCUPIED",
		"USERNAME_INVALID",
		"PEER_ID_INVALID",
		"MSG_ID_INVALID",
		"CHANNEL_INVALID",
		"CHANNEL_PRIVATE",
		"FILE_REFERENCE_EXPIRED",
	):
		return fmt.Errorf("%w: %s", tg.ErrNotFound, err)
	case tgerr.IsCode(err, 401) || tgerr.IsCode(err, 403):
		return fmt.Errorf("%w: %s", tg.ErrPermission, err)
	case errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", tg.ErrConnection, err)
	}
	return err
}
