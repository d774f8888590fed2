package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"devmatch/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// fakeDynamo is an in-memory DynamoAPI that understands the small
// expression grammar the services emit: "a = :v" / "#a <> :v" clauses
// joined by AND, "SET #a = :v, ..." updates and attribute_not_exists.
type fakeDynamo struct {
	mu     sync.Mutex
	keys   map[string][]string
	tables map[string][]map[string]types.AttributeValue

	puts    int
	queries int
	scans   int
	err     error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keys: map[string][]string{
			models.UserProfilesTable: {"userId"},
			models.SessionsTable:     {"token"},
			models.RequestsTable:     {"requestId"},
			models.MessagesTable:     {"conversationId", "sortKey"},
		},
		tables: map[string][]map[string]types.AttributeValue{},
	}
}

func (f *fakeDynamo) seed(t *testing.T, table string, v interface{}) {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], item)
}

func (f *fakeDynamo) items(table string) []map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]types.AttributeValue(nil), f.tables[table]...)
}

func (f *fakeDynamo) indexOf(table string, key map[string]types.AttributeValue) int {
	for i, item := range f.tables[table] {
		match := true
		for _, k := range f.keys[table] {
			if attrString(item[k]) != attrString(key[k]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{}
	for _, k := range f.keys[table] {
		key[k] = item[k]
	}
	return key
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if i := f.indexOf(*in.TableName, in.Key); i >= 0 {
		return &dynamodb.GetItemOutput{Item: f.tables[*in.TableName][i]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	table := *in.TableName
	i := f.indexOf(table, f.keyOf(table, in.Item))
	if in.ConditionExpression != nil && strings.HasPrefix(*in.ConditionExpression, "attribute_not_exists") && i >= 0 {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("exists")}
	}
	f.puts++
	if i >= 0 {
		f.tables[table][i] = in.Item
	} else {
		f.tables[table] = append(f.tables[table], in.Item)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	table := *in.TableName
	i := f.indexOf(table, in.Key)
	if i < 0 {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("missing")}
	}
	item := f.tables[table][i]
	if in.ConditionExpression != nil && !evalExpr(*in.ConditionExpression, item, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("condition")}
	}

	updated := map[string]types.AttributeValue{}
	for k, v := range item {
		updated[k] = v
	}
	assignments := strings.TrimPrefix(*in.UpdateExpression, "SET ")
	for _, assignment := range strings.Split(assignments, ",") {
		parts := strings.SplitN(strings.TrimSpace(assignment), " = ", 2)
		updated[resolveName(parts[0], in.ExpressionAttributeNames)] = in.ExpressionAttributeValues[parts[1]]
	}
	f.tables[table][i] = updated
	return &dynamodb.UpdateItemOutput{Attributes: updated}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	table := *in.TableName
	if i := f.indexOf(table, in.Key); i >= 0 {
		f.tables[table] = append(f.tables[table][:i], f.tables[table][i+1:]...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.queries++
	var out []map[string]types.AttributeValue
	for _, item := range f.tables[*in.TableName] {
		if evalExpr(*in.KeyConditionExpression, item, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			out = append(out, item)
		}
	}
	ascending := in.ScanIndexForward == nil || *in.ScanIndexForward
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return attrString(out[i]["sortKey"]) < attrString(out[j]["sortKey"])
		}
		return attrString(out[i]["sortKey"]) > attrString(out[j]["sortKey"])
	})
	return &dynamodb.QueryOutput{Items: out, Count: int32(len(out))}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.scans++
	var out []map[string]types.AttributeValue
	for _, item := range f.tables[*in.TableName] {
		if in.FilterExpression == nil || evalExpr(*in.FilterExpression, item, in.ExpressionAttributeNames, in.ExpressionAttributeValues) {
			out = append(out, item)
		}
	}
	return &dynamodb.ScanOutput{Items: out, Count: int32(len(out))}, nil
}

func evalExpr(expr string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) bool {
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		op := " = "
		if strings.Contains(clause, " <> ") {
			op = " <> "
		}
		parts := strings.SplitN(clause, op, 2)
		if len(parts) != 2 {
			panic(fmt.Sprintf("fakeDynamo: unsupported clause %q", clause))
		}
		got := attrString(item[resolveName(parts[0], names)])
		want := attrString(values[strings.TrimSpace(parts[1])])
		if (op == " = ") != (got == want) {
			return false
		}
	}
	return true
}

func resolveName(name string, names map[string]string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "#") {
		return names[name]
	}
	return name
}

func attrString(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	}
	return ""
}

func strPtr(s string) *string { return &s }

// testServices wires every service over one fake table set.
type testServices struct {
	db       *fakeDynamo
	profiles *UserProfileService
	sessions *SessionService
	requests *RequestService
	feed     *FeedService
	chat     *ChatService
}

func newTestServices() *testServices {
	db := newFakeDynamo()
	dynamo := &DynamoService{Client: db}
	profiles := &UserProfileService{Dynamo: dynamo}
	requests := &RequestService{Dynamo: dynamo, Profiles: profiles}
	return &testServices{
		db:       db,
		profiles: profiles,
		sessions: &SessionService{Dynamo: dynamo, Profiles: profiles},
		requests: requests,
		feed:     &FeedService{Dynamo: dynamo, Profiles: profiles, Requests: requests, BatchSize: 10},
		chat:     &ChatService{Dynamo: dynamo, Profiles: profiles, Requests: requests},
	}
}

func (ts *testServices) seedUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		ts.db.seed(t, models.UserProfilesTable, models.User{
			UserID:    id,
			EmailID:   id + "@example.com",
			FirstName: strings.ToUpper(id),
		})
	}
}

func (ts *testServices) seedRequest(t *testing.T, id, from, to string, status models.RequestStatus) {
	t.Helper()
	ts.db.seed(t, models.RequestsTable, models.RequestRecord{
		RequestID:  id,
		FromUserID: from,
		ToUserID:   to,
		Status:     status,
		CreatedAt:  "2024-01-01T00:00:00.000000000Z",
	})
}
