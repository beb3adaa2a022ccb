package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/notification"
)

func TestService_Create(t *testing.T) {
	recipient := uuid.New()

	type testCase struct {
		name      string
		input     *notification.Notification
		setupMock func(m *notification.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "Success",
			input: &notification.Notification{RecipientID: recipient, Title: "Pedido Faturado", Read: true},
			setupMock: func(m *notification.MockRepository) {
				m.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *notification.Notification) error {
						assert.False(t, n.Read)
						n.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "NoRecipient",
			input:   &notification.Notification{Title: "x"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "NoTitle",
			input:   &notification.Notification{RecipientID: recipient},
			wantErr: apperr.ErrValidation,
		},
		{
			name:  "RepoError",
			input: &notification.Notification{RecipientID: recipient, Title: "x"},
			setupMock: func(m *notification.MockRepository) {
				m.EXPECT().CreateNotification(gomock.Any(), gomock.Any()).
					Return(apperr.Persistence("creating notification", errors.New("db down")))
			},
			wantErr: apperr.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := notification.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := notification.NewService(repo).Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tt.input.ID)
		})
	}
}

func TestService_UnreadCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notification.NewMockRepository(ctrl)
	recipient := uuid.New()

	repo.EXPECT().ListNotifications(gomock.Any(), recipient, true).
		Return([]*notification.Notification{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	n, err := notification.NewService(repo).UnreadCount(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_ScopedToRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := notification.NewMockRepository(ctrl)
	svc := notification.NewService(repo)
	recipient, id := uuid.New(), uuid.New()

	repo.EXPECT().MarkRead(gomock.Any(), recipient, id).Return(apperr.ErrNotFound)
	repo.EXPECT().DeleteNotification(gomock.Any(), recipient, id).Return(nil)
	repo.EXPECT().MarkAllRead(gomock.Any(), recipient).Return(int64(3), nil)
	repo.EXPECT().DeleteAllNotifications(gomock.Any(), recipient).Return(int64(4), nil)

	ctx := context.Background()

	assert.ErrorIs(t, svc.MarkRead(ctx, recipient, id), apperr.ErrNotFound)
	assert.NoError(t, svc.Delete(ctx, recipient, id))

	n, err := svc.MarkAllRead(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = svc.DeleteAll(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
