package place

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ categoryReader = &categoryReaderMock{}

type categoryReaderMock struct {
	CategoryFunc func(ctx context.Context, id int) (*domain.Category, error)

	calls struct {
		Category []struct {
			Ctx context.Context
			Id  int
		}
	}
	lockCategory sync.RWMutex
}

func (mock *categoryReaderMock) Category(ctx context.Context, id int) (*domain.Category, error) {
	if mock.CategoryFunc == nil {
		panic("categoryReaderMock.CategoryFunc: method is nil but categoryReader.Category was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Id  int
	}{Ctx: ctx, Id: id}
	mock.lockCategory.Lock()
	mock.calls.Category = append(mock.calls.Category, callInfo)
	mock.lockCategory.Unlock()
	return mock.CategoryFunc(ctx, id)
}

func (mock *categoryReaderMock) CategoryCalls() []struct {
	Ctx context.Context
	Id  int
} {
	mock.lockCategory.RLock()
	calls := mock.calls.Category
	mock.lockCategory.RUnlock()
	return calls
}
