package utils

import (
	"context"

	"github.com/mmdatafocus/picklist_bridge/appctx"
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyCorrelationId, correlationId)
}

func GetTriggeredByFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, appctx.ContextKeyTriggeredBy)
}

func SetTriggeredByInContext(ctx context.Context, source string) context.Context {
	return appctx.Set(ctx, appctx.ContextKeyTriggeredBy, source)
}
