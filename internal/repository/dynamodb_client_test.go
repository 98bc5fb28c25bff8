package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut          *dynamodb.GetItemOutput
	getErr          error
	putErr          error
	deleteErr       error
	lastGetInput    *dynamodb.GetItemInput
	lastPutInput    *dynamodb.PutItemInput
	lastDeleteInput *dynamodb.DeleteItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.lastDeleteInput = in
	return &dynamodb.DeleteItemOutput{}, f.deleteErr
}

func mustNewDynamoStore(t *testing.T, db *fakeDynamo) *DynamoStore {
	t.Helper()
	s, err := NewDynamoStore(db, "sessions")
	require.NoError(t, err)
	return s
}

func keyValue(t *testing.T, key map[string]types.AttributeValue, attr string) string {
	t.Helper()
	v, ok := key[attr].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q", attr)
	return v.Value
}

func TestDynamoGet_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: "SESSION#authToken"},
		"SK":    &types.AttributeValueMemberS{Value: skToken},
		"value": &types.AttributeValueMemberS{Value: "T1"},
	}}}
	s := mustNewDynamoStore(t, db)

	v, ok, err := s.Get(context.Background(), "authToken")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "T1", v)
	require.True(t, *db.lastGetInput.ConsistentRead)
	require.Equal(t, "SESSION#authToken", keyValue(t, db.lastGetInput.Key, "PK"))
	require.Equal(t, skToken, keyValue(t, db.lastGetInput.Key, "SK"))
}

func TestDynamoGet_Missing(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{}})
	_, ok, err := s.Get(context.Background(), "authToken")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDynamoGet_Error(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{getErr: errors.New("boom")})
	_, _, err := s.Get(context.Background(), "authToken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "repository: Get")
}

func TestDynamoGet_MalformedValue(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: "SESSION#authToken"},
		"value": &types.AttributeValueMemberN{Value: "1"},
	}}})
	_, _, err := s.Get(context.Background(), "authToken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode value")
}

func TestDynamoPut_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)
	s.now = func() time.Time { return time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Put(context.Background(), "authToken", "T1"))
	item := db.lastPutInput.Item
	require.Equal(t, "sessions", *db.lastPutInput.TableName)
	require.Equal(t, "T1", keyValue(t, item, "value"))
	require.Equal(t, "2026-02-25T10:00:00Z", keyValue(t, item, "updatedAt"))
	require.Nil(t, db.lastPutInput.ConditionExpression)
	require.NotContains(t, item, "ttl")
	require.Len(t, item, 4)
}

func TestDynamoPut_Error(t *testing.T) {
	s := mustNewDynamoStore(t, &fakeDynamo{putErr: errors.New("ProvisionedThroughputExceededException")})
	err := s.Put(context.Background(), "authToken", "T1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "repository: Put")
}

func TestDynamoDelete(t *testing.T) {
	db := &fakeDynamo{}
	s := mustNewDynamoStore(t, db)
	require.NoError(t, s.Delete(context.Background(), "authToken"))
	require.Equal(t, "SESSION#authToken", keyValue(t, db.lastDeleteInput.Key, "PK"))

	db.deleteErr = errors.New("throttled")
	err := s.Delete(context.Background(), "authToken")
	require.Error(t, err)
	require.Contains(t, err.Error(), "repository: Delete")
}

func TestSessionPK(t *testing.T) {
	require.Equal(t, "SESSION#authToken:work", sessionPK("authToken:work"))
}

func TestNewDynamoStore_NilAPI(t *testing.T) {
	_, err := NewDynamoStore(nil, "sessions")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNewDynamoStore_EmptyTableName(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
