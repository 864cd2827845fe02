package s3

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/entryship/internal/app"
	"github.com/bft-labs/entryship/internal/domain"
	"github.com/bft-labs/entryship/pkg/log"
)

type fakePutter struct {
	objects map[string][]byte
	inputs  []*awss3.PutObjectInput
	err     error
}

func (f *fakePutter) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Key)] = body
	f.inputs = append(f.inputs, in)
	return &awss3.PutObjectOutput{}, nil
}

func decodeLines(t *testing.T, body []byte) []domain.Entry {
	t.Helper()
	var out []domain.Entry
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		var e domain.Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestEntryWriter_ObjectPerBatch(t *testing.T) {
	fake := &fakePutter{}
	w := NewEntryWriter(fake, "bucket", "imports/", log.NewNoopLogger())
	ctx := context.Background()

	require.NoError(t, w.WriteEntries(ctx, domain.NewBatch("scene", 1, []domain.Entry{{"id": 1}, {"id": 2}})))
	require.NoError(t, w.WriteEntries(ctx, domain.NewBatch("scene", 2, []domain.Entry{{"id": 3}})))

	require.Len(t, fake.objects, 2)
	first := decodeLines(t, fake.objects["imports/scene/000001.jsonl"])
	require.Len(t, first, 2)
	assert.Equal(t, float64(1), first[0]["id"])
	assert.Equal(t, float64(2), first[1]["id"])

	second := decodeLines(t, fake.objects["imports/scene/000002.jsonl"])
	require.Len(t, second, 1)
	assert.Equal(t, float64(3), second[0]["id"])

	in := fake.inputs[0]
	assert.Equal(t, "bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "application/x-ndjson", aws.ToString(in.ContentType))
	assert.Equal(t, int64(len(fake.objects["imports/scene/000001.jsonl"])), aws.ToInt64(in.ContentLength))
}

func TestEntryWriter_RunsDoNotOverwrite(t *testing.T) {
	fake := &fakePutter{}
	w := NewEntryWriter(fake, "bucket", "", log.NewNoopLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := app.NewPersister(w, "imported", 2, nil)
		require.NoError(t, err)
		require.NoError(t, p.Post(ctx, domain.Entry{"id": 1}, domain.Entry{"id": 2}))
		require.NoError(t, p.Err())
		assert.Equal(t, 2, p.Stats().Persisted)
	}

	require.Len(t, fake.objects, 2)
	for key, body := range fake.objects {
		assert.Regexp(t, `^imported/[0-9a-f-]{36}/000001\.jsonl$`, key)
		assert.Len(t, decodeLines(t, body), 2)
	}
}

func TestEntryWriter_KeyWithRun(t *testing.T) {
	w := NewEntryWriter(&fakePutter{}, "bucket", "p/", log.NewNoopLogger())
	batch := domain.NewBatch("scene", 3, nil)
	batch.Run = "r1"
	assert.Equal(t, "p/scene/r1/000003.jsonl", w.Key(batch))
}

func TestEntryWriter_EmptyBatch(t *testing.T) {
	fake := &fakePutter{}
	w := NewEntryWriter(fake, "bucket", "", log.NewNoopLogger())
	require.NoError(t, w.WriteEntries(context.Background(), domain.NewBatch("scene", 1, nil)))
	assert.Empty(t, fake.objects)
}

func TestEntryWriter_PutError(t *testing.T) {
	cause := errors.New("access denied")
	w := NewEntryWriter(&fakePutter{err: cause}, "bucket", "", log.NewNoopLogger())

	err := w.WriteEntries(context.Background(), domain.NewBatch("scene", 7, []domain.Entry{{"id": 1}}))
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "scene/000007.jsonl")
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidConfig)

	_, err := Open(context.Background(), Config{}, log.NewNoopLogger())
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestOpen_StaticCredentials(t *testing.T) {
	w, err := Open(context.Background(), Config{
		Bucket:    "bucket",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Prefix:    "p/",
	}, log.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "p/scene/000012.jsonl", w.Key(domain.NewBatch("scene", 12, nil)))
}
