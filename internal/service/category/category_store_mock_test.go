package category

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ categoryStore = &categoryStoreMock{}

type categoryStoreMock struct {
	CategoryFunc       func(ctx context.Context, id int) (*domain.Category, error)
	CategoriesFunc     func(ctx context.Context) ([]domain.Category, error)
	CreateCategoryFunc func(ctx context.Context, cat domain.Category) (datasync.Outcome, error)
	PutCategoryFunc    func(ctx context.Context, cat domain.Category) (datasync.Outcome, error)
	DeleteCategoryFunc func(ctx context.Context, id int) (datasync.Outcome, error)

	calls struct {
		Category       []struct {
			Ctx context.Context
			Id  int
		}
		Categories     []struct {
			Ctx context.Context
		}
		CreateCategory []struct {
			Ctx context.Context
			Cat domain.Category
		}
		PutCategory    []struct {
			Ctx context.Context
			Cat domain.Category
		}
		DeleteCategory []struct {
			Ctx context.Context
			Id  int
		}
	}
	lockCategory       sync.RWMutex
	lockCategories     sync.RWMutex
	lockCreateCategory sync.RWMutex
	lockPutCategory    sync.RWMutex
	lockDeleteCategory sync.RWMutex
}

func (mock *categoryStoreMock) Category(ctx context.Context, id int) (*domain.Category, error) {
	if mock.CategoryFunc == nil {
		panic("categoryStoreMock.CategoryFunc: method is nil but categoryStore.Category was just called")
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

func (mock *categoryStoreMock) CategoryCalls() []struct {
	Ctx context.Context
	Id  int
} {
	mock.lockCategory.RLock()
	calls := mock.calls.Category
	mock.lockCategory.RUnlock()
	return calls
}

func (mock *categoryStoreMock) Categories(ctx context.Context) ([]domain.Category, error) {
	if mock.CategoriesFunc == nil {
		panic("categoryStoreMock.CategoriesFunc: method is nil but categoryStore.Categories was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockCategories.Lock()
	mock.calls.Categories = append(mock.calls.Categories, callInfo)
	mock.lockCategories.Unlock()
	return mock.CategoriesFunc(ctx)
}

func (mock *categoryStoreMock) CategoriesCalls() []struct {
	Ctx context.Context
} {
	mock.lockCategories.RLock()
	calls := mock.calls.Categories
	mock.lockCategories.RUnlock()
	return calls
}

func (mock *categoryStoreMock) CreateCategory(ctx context.Context, cat domain.Category) (datasync.Outcome, error) {
	if mock.CreateCategoryFunc == nil {
		panic("categoryStoreMock.CreateCategoryFunc: method is nil but categoryStore.CreateCategory was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Cat domain.Category
	}{Ctx: ctx, Cat: cat}
	mock.lockCreateCategory.Lock()
	mock.calls.CreateCategory = append(mock.calls.CreateCategory, callInfo)
	mock.lockCreateCategory.Unlock()
	return mock.CreateCategoryFunc(ctx, cat)
}

func (mock *categoryStoreMock) CreateCategoryCalls() []struct {
	Ctx context.Context
	Cat domain.Category
} {
	mock.lockCreateCategory.RLock()
	calls := mock.calls.CreateCategory
	mock.lockCreateCategory.RUnlock()
	return calls
}

func (mock *categoryStoreMock) PutCategory(ctx context.Context, cat domain.Category) (datasync.Outcome, error) {
	if mock.PutCategoryFunc == nil {
		panic("categoryStoreMock.PutCategoryFunc: method is nil but categoryStore.PutCategory was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Cat domain.Category
	}{Ctx: ctx, Cat: cat}
	mock.lockPutCategory.Lock()
	mock.calls.PutCategory = append(mock.calls.PutCategory, callInfo)
	mock.lockPutCategory.Unlock()
	return mock.PutCategoryFunc(ctx, cat)
}

func (mock *categoryStoreMock) PutCategoryCalls() []struct {
	Ctx context.Context
	Cat domain.Category
} {
	mock.lockPutCategory.RLock()
	calls := mock.calls.PutCategory
	mock.lockPutCategory.RUnlock()
	return calls
}

func (mock *categoryStoreMock) DeleteCategory(ctx context.Context, id int) (datasync.Outcome, error) {
	if mock.DeleteCategoryFunc == nil {
		panic("categoryStoreMock.DeleteCategoryFunc: method is nil but categoryStore.DeleteCategory was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Id  int
	}{Ctx: ctx, Id: id}
	mock.lockDeleteCategory.Lock()
	mock.calls.DeleteCategory = append(mock.calls.DeleteCategory, callInfo)
	mock.lockDeleteCategory.Unlock()
	return mock.DeleteCategoryFunc(ctx, id)
}

func (mock *categoryStoreMock) DeleteCategoryCalls() []struct {
	Ctx context.Context
	Id  int
} {
	mock.lockDeleteCategory.RLock()
	calls := mock.calls.DeleteCategory
	mock.lockDeleteCategory.RUnlock()
	return calls
}
