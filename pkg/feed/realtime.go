package feed

import (
	"context"
	"time"

	"github.com/tathya/tathya-cli/pkg/logger"
	"github.com/tathya/tathya-cli/pkg/websocket"
)

// Subscriber delivers server events
type Subscriber interface {
	On(msgType websocket.MessageType, callback func(websocket.Message)) func()
}

const realtimeReloadTimeout = 30 * time.Second

// BindRealtime feeds server events into ctrl. Like events overwrite like
// state in place; structural events trigger a reload. The returned func
// removes every subscription.
func BindRealtime(ctrl *Controller, sub Subscriber) func() {
	onLike := func(msg websocket.Message) {
		var p websocket.LikePayload
		if err := msg.Decode(&p); err != nil {
			logger.Debug("Ignoring malformed like event", "error", err)
			return
		}
		if p.LikedBy == nil {
			p.LikedBy = []string{}
		}
		ctrl.ApplyLikeState(p.PostID, p.CommentID, p.ReplyID, p.LikedBy)
	}

	reload := func(msg websocket.Message) {
		ctx, cancel := context.WithTimeout(context.Background(), realtimeReloadTimeout)
		defer cancel()
		if err := ctrl.Reload(ctx); err != nil {
			logger.Warn("Realtime reload failed", "event", msg.Type, "error", err)
		}
	}

	offs := []func(){
		sub.On(websocket.MessageTypePostLiked, onLike),
		sub.On(websocket.MessageTypeCommentLiked, onLike),
		sub.On(websocket.MessageTypePostCommented, reload),
		sub.On(websocket.MessageTypePostCreated, reload),
		sub.On(websocket.MessageTypePostDeleted, reload),
	}

	return func() {
		for _, off := range offs {
			off()
		}
	}
}
