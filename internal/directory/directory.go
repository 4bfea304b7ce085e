// Package directory はMongoDB上のユーザーディレクトリを提供します。
package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateUsername は既に使用されているユーザー名での登録を表します。
var ErrDuplicateUsername = errors.New("directory: username already taken")

// User はusersコレクションに保存するアカウント情報です。
// PasswordHash にはbcryptハッシュのみを入れます。平文パスワードは保存しません。
type User struct {
	UserID       string `bson:"user_id"`
	Username     string `bson:"username"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password"`
}

// Credential はログイン照合用の射影です。
// 照合に必要な username / password / _id 以外は取得しません。
type Credential struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
}

// Store は認証フローが必要とするディレクトリ操作です。
type Store interface {
	Insert(ctx context.Context, user User) error
	FindByUsername(ctx context.Context, username string) ([]Credential, error)
}

// Mongo は Store のMongoDB実装です。
type Mongo struct {
	users *mongo.Collection
}

// NewMongo は指定データベースの users コレクションを使うディレクトリを作成します。
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{users: db.Collection("users")}
}

// EnsureIndexes は username のユニークインデックスを作成します。
// 起動時に一度呼び出すことで、重複登録をデータベース側で防ぎます。
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

// Insert はユーザーを1件登録します。
// ユーザー名が重複している場合は ErrDuplicateUsername を返します。
func (m *Mongo) Insert(ctx context.Context, user User) error {
	if _, err := m.users.InsertOne(ctx, user); err != nil {
		return mapInsertErr(err)
	}
	return nil
}

// FindByUsername はユーザー名が一致するレコードを照合用の射影で返します。
// 該当なしは空スライスで返し、エラーにはしません。
func (m *Mongo) FindByUsername(ctx context.Context, username string) ([]Credential, error) {
	opts := options.Find().SetProjection(bson.D{
		{Key: "username", Value: 1},
		{Key: "password", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.users.Find(ctx, bson.D{{Key: "username", Value: username}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var creds []Credential
	if err := cursor.All(ctx, &creds); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return creds, nil
}

func mapInsertErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateUsername
	}
	return fmt.Errorf("insert user: %w", err)
}
