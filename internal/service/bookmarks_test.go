package service_test

import (
	"errors"
	"testing"
	"time"

	"versecache/internal/service"
	"versecache/internal/service/mocks"
	"versecache/internal/storage"
	storagemocks "versecache/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

func TestBookmarkService_Create(t *testing.T) {
	dbErr := errors.New("disk I/O error")

	tests := []struct {
		name         string
		req          service.BookmarkRequest
		mockSetup    func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore)
		wantErr      bool
		checkErrType func(error) bool
		wantVerses   []int
	}{
		{
			name: "whole chapter when no verses selected",
			req:  service.BookmarkRequest{Book: "John", Chapter: 3, Translation: "web", Note: "  night visit  "},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {
				res.EXPECT().Resolve(gomock.Any(), "John", 3, "web").Return(johnThree(), nil)
				store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, b *storage.BookmarkRecord) error {
						if b.Note != "night visit" {
							t.Errorf("note = %q, want trimmed", b.Note)
						}
						b.ID = "bm-1"
						b.CreatedAt = time.Now()
						return nil
					})
			},
			wantVerses: []int{1, 16},
		},
		{
			name: "selected verses sorted and deduplicated",
			req:  service.BookmarkRequest{Book: "John", Chapter: 3, Translation: "web", Verses: []int{16, 1, 16}},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {
				res.EXPECT().Resolve(gomock.Any(), "John", 3, "web").Return(johnThree(), nil)
				store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantVerses: []int{1, 16},
		},
		{
			name: "unknown verse",
			req:  service.BookmarkRequest{Book: "John", Chapter: 3, Translation: "web", Verses: []int{2}},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {
				res.EXPECT().Resolve(gomock.Any(), "John", 3, "web").Return(johnThree(), nil)
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				var vErr *service.ValidationError
				return errors.As(err, &vErr) && vErr.Field == "verses"
			},
		},
		{
			name:      "empty book",
			req:       service.BookmarkRequest{Book: "  ", Chapter: 3},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				return errors.Is(err, service.ErrInvalidInput)
			},
		},
		{
			name:      "chapter zero",
			req:       service.BookmarkRequest{Book: "John", Chapter: 0},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				var vErr *service.ValidationError
				return errors.As(err, &vErr) && vErr.Field == "chapter"
			},
		},
		{
			name: "content unavailable",
			req:  service.BookmarkRequest{Book: "Nonexistent", Chapter: 1, Translation: "web"},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {
				res.EXPECT().Resolve(gomock.Any(), "Nonexistent", 1, "web").Return(nil, service.ErrContentUnavailable)
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				return errors.Is(err, service.ErrContentUnavailable)
			},
		},
		{
			name: "store failure",
			req:  service.BookmarkRequest{Book: "John", Chapter: 3, Translation: "web"},
			mockSetup: func(res *mocks.MockResolver, store *storagemocks.MockBookmarkStore) {
				res.EXPECT().Resolve(gomock.Any(), "John", 3, "web").Return(johnThree(), nil)
				store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr)
			},
			wantErr: true,
			checkErrType: func(err error) bool {
				return errors.Is(err, dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			res := mocks.NewMockResolver(ctrl)
			store := storagemocks.NewMockBookmarkStore(ctrl)
			tt.mockSetup(res, store)

			svc := service.NewBookmarkService(res, store)
			got, err := svc.Create(testContext(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Create() expected error, got nil")
				}
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("Create() error type mismatch: %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			if got.Reference != "John 3" {
				t.Errorf("Create() reference = %q, want John 3", got.Reference)
			}
			if len(got.Verses) != len(tt.wantVerses) {
				t.Fatalf("Create() verses = %d, want %d", len(got.Verses), len(tt.wantVerses))
			}
			for i, v := range got.Verses {
				if v.Index != tt.wantVerses[i] {
					t.Errorf("Create() verse[%d] = %d, want %d", i, v.Index, tt.wantVerses[i])
				}
				if v.Text == "" {
					t.Errorf("Create() verse[%d] has empty text", i)
				}
			}
		})
	}
}

func TestBookmarkService_GetAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockBookmarkStore(ctrl)
	svc := service.NewBookmarkService(mocks.NewMockResolver(ctrl), store)

	store.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
	if _, err := svc.Get(testContext(), "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	want := &storage.BookmarkRecord{ID: "bm-1", Reference: "John 3"}
	store.EXPECT().GetByID(gomock.Any(), "bm-1").Return(want, nil)
	got, err := svc.Get(testContext(), "bm-1")
	if err != nil || got != want {
		t.Errorf("Get() = %v, %v", got, err)
	}

	store.EXPECT().Delete(gomock.Any(), "missing").Return(storage.ErrNotFound)
	if err := svc.Delete(testContext(), "missing"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}

	store.EXPECT().Delete(gomock.Any(), "bm-1").Return(nil)
	if err := svc.Delete(testContext(), "bm-1"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestBookmarkService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockBookmarkStore(ctrl)
	svc := service.NewBookmarkService(mocks.NewMockResolver(ctrl), store)

	store.EXPECT().List(gomock.Any()).Return([]storage.BookmarkRecord{{ID: "a"}, {ID: "b"}}, nil)
	got, err := svc.List(testContext())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List() = %d bookmarks, want 2", len(got))
	}

	store.EXPECT().List(gomock.Any()).Return(nil, errors.New("boom"))
	if _, err := svc.List(testContext()); err == nil {
		t.Error("List() expected error")
	}
}
