package in

import (
	"context"

	journaldto "segdesk/internal/modules/journal/dto"
	journalin "segdesk/internal/modules/journal/port/in"
)

type CLIHandler struct {
	usecase journalin.Usecase
}

func NewCLIHandler(usecase journalin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, userID string, limit int) ([]journaldto.BatchOutput, error) {
	return h.usecase.List(ctx, journaldto.ListInput{UserID: userID, Limit: limit})
}

func (h CLIHandler) Show(ctx context.Context, id string) (journaldto.BatchDetailOutput, error) {
	return h.usecase.Get(ctx, id)
}
