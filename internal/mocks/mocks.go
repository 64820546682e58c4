package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-platform/internal/models"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) Create(ctx context.Context, name string, creatorID int) (models.Room, error) {
	args := m.Called(ctx, name, creatorID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetOrCreate(ctx context.Context, name string, creatorID int) (models.Room, error) {
	args := m.Called(ctx, name, creatorID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetByID(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetByName(ctx context.Context, name string) (models.Room, error) {
	args := m.Called(ctx, name)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) List(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) Delete(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) AddMember(ctx context.Context, roomID, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) MemberIDs(ctx context.Context, roomID int) ([]int, error) {
	args := m.Called(ctx, roomID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *RoomRepositoryMock) AdjustUsersAmount(ctx context.Context, roomID, delta int) error {
	args := m.Called(ctx, roomID, delta)
	return args.Error(0)
}

func (m *RoomRepositoryMock) SetMatrixRoomID(ctx context.Context, roomID int, matrixRoomID string) error {
	args := m.Called(ctx, roomID, matrixRoomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, roomID, userID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, userID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByRoomName(ctx context.Context, roomName string) ([]models.Message, error) {
	args := m.Called(ctx, roomName)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) AddReaction(ctx context.Context, messageID int, reaction string) (models.ReactionTally, error) {
	args := m.Called(ctx, messageID, reaction)
	var tally models.ReactionTally
	if val := args.Get(0); val != nil {
		tally = val.(models.ReactionTally)
	}
	return tally, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, messageID, userID int) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ReaderIDs(ctx context.Context, messageID int) ([]int, error) {
	args := m.Called(ctx, messageID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash, role)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) List(ctx context.Context, search string) ([]models.User, error) {
	args := m.Called(ctx, search)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetOrCreateProfile(ctx context.Context, userID int) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *UserRepositoryMock) AddFriend(ctx context.Context, userID, friendID int) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListFriends(ctx context.Context, userID int) ([]models.User, error) {
	args := m.Called(ctx, userID)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type ArticleRepositoryMock struct {
	mock.Mock
}

func (m *ArticleRepositoryMock) Create(ctx context.Context, title, content string, userID int) (models.Article, error) {
	args := m.Called(ctx, title, content, userID)
	var article models.Article
	if val := args.Get(0); val != nil {
		article = val.(models.Article)
	}
	return article, args.Error(1)
}

func (m *ArticleRepositoryMock) GetByID(ctx context.Context, articleID int) (models.Article, error) {
	args := m.Called(ctx, articleID)
	var article models.Article
	if val := args.Get(0); val != nil {
		article = val.(models.Article)
	}
	return article, args.Error(1)
}

func (m *ArticleRepositoryMock) List(ctx context.Context, search string) ([]models.Article, error) {
	args := m.Called(ctx, search)
	var articles []models.Article
	if val := args.Get(0); val != nil {
		articles = val.([]models.Article)
	}
	return articles, args.Error(1)
}

func (m *ArticleRepositoryMock) Update(ctx context.Context, articleID int, title, content string) error {
	args := m.Called(ctx, articleID, title, content)
	return args.Error(0)
}

func (m *ArticleRepositoryMock) Delete(ctx context.Context, articleID int) error {
	args := m.Called(ctx, articleID)
	return args.Error(0)
}

type TokenRepositoryMock struct {
	mock.Mock
}

func (m *TokenRepositoryMock) Blacklist(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenRepositoryMock) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
