package email

import (
	"context"

	"github.com/freee021022/onconet/internal/model"
)

// Service sends the notifications a doctor receives about new work.
type Service interface {
	SendSecondOpinionRequested(ctx context.Context, doctor, patient *model.User, req *model.SecondOpinionRequest) error
	SendSosContractCreated(ctx context.Context, doctor, patient *model.User, contract *model.SosContract) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
