package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"
	"github.com/zeebo/xxh3"

	"fwetl/pkg/records"
)

func sample() records.RecordSet {
	rs := records.New("pccn", "qty", "nomen")
	rs.Rows = []records.Record{
		{records.Parse("AB1"), records.Parse("2"), records.Parse("bolt, hex")},
		{records.Parse("AB2"), records.Parse("1.5"), records.Null()},
	}
	return rs.Unify()
}

func TestEncodeCSV(t *testing.T) {
	t.Parallel()

	got, err := Encode(sample(), FormatCSV)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := "pccn,qty,nomen\nAB1,2.0,\"bolt, hex\"\nAB2,1.5,\n"
	if string(got) != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeParquet(t *testing.T) {
	t.Parallel()

	data, err := Encode(sample(), FormatParquet)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	if f.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2", f.NumRows())
	}
	if n := len(f.Schema().Fields()); n != 3 {
		t.Fatalf("fields = %d, want 3", n)
	}
	if order, ok := f.Lookup(ColumnOrderKey); !ok || order != "pccn,qty,nomen" {
		t.Fatalf("Lookup(%s) = %q, %v, want pccn,qty,nomen", ColumnOrderKey, order, ok)
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := Encode(sample(), "xlsx"); err == nil {
		t.Fatal("Encode(xlsx) error = nil, want non-nil")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"results/out.csv":      FormatCSV,
		"results/out.PARQUET":  FormatParquet,
		"s3://b/k/out.parquet": FormatParquet,
		"results/no-extension": FormatCSV,
	}
	for in, want := range tests {
		if got := FormatFromPath(in); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestWrite_Idempotent writes the same record set twice to the same path and
// expects identical bytes and digests.
func TestWrite_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "results", "result-task2_option2.csv")

	first, err := Write(ctx, Local{}, "test", sample(), dest, "")
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	second, err := Write(ctx, Local{}, "test", sample(), dest, "")
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if xxh3.Hash(data) != first.Digest || len(data) != first.Bytes {
		t.Fatalf("file does not match reported digest")
	}
	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want only the artifact", len(entries))
	}
}

type memStore struct {
	got map[string][]byte
	err error
}

func (m *memStore) Write(_ context.Context, location string, data io.Reader) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.got[location] = b
	return nil
}

func TestRouter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := &memStore{got: map[string][]byte{}}
	remote := &memStore{got: map[string][]byte{}}
	r := Router{Local: local, S3: remote}

	if err := r.Write(ctx, "s3://bucket/out.csv", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Write s3: %v", err)
	}
	if err := r.Write(ctx, "out.csv", bytes.NewReader([]byte("y"))); err != nil {
		t.Fatalf("Write local: %v", err)
	}
	if string(remote.got["s3://bucket/out.csv"]) != "x" || string(local.got["out.csv"]) != "y" {
		t.Fatalf("routing wrong: local=%v remote=%v", local.got, remote.got)
	}

	if err := (Router{}).Write(ctx, "s3://bucket/out.csv", bytes.NewReader(nil)); err == nil {
		t.Fatal("Router without S3 store: want error")
	}
}

func TestWrite_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Write(context.Background(), &memStore{err: boom}, "test", sample(), "out.csv", FormatCSV)
	if !errors.Is(err, boom) {
		t.Fatalf("Write error = %v, want %v", err, boom)
	}
}

func TestSplitS3(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in          string
		bucket, key string
		wantErr     bool
	}{
		{in: "s3://results/task2/out.csv", bucket: "results", key: "task2/out.csv"},
		{in: "s3://results", wantErr: true},
		{in: "s3:///key", wantErr: true},
		{in: "/tmp/out.csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			b, k, err := SplitS3(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitS3 error = %v, wantErr %v", err, tt.wantErr)
			}
			if b != tt.bucket || k != tt.key {
				t.Fatalf("SplitS3 = %q, %q; want %q, %q", b, k, tt.bucket, tt.key)
			}
		})
	}
}

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, err := io.ReadAll(in.Body)
	f.body = b
	return &s3.PutObjectOutput{}, err
}

func TestS3Write(t *testing.T) {
	t.Parallel()

	fp := &fakePutter{}
	s := &S3{client: fp}
	if err := s.Write(context.Background(), "s3://results/task2.csv", bytes.NewReader([]byte("a,b\n"))); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if *fp.in.Bucket != "results" || *fp.in.Key != "task2.csv" || string(fp.body) != "a,b\n" {
		t.Fatalf("PutObject got bucket=%q key=%q body=%q", *fp.in.Bucket, *fp.in.Key, fp.body)
	}
}

func TestNewS3(t *testing.T) {
	t.Parallel()

	s := NewS3(S3Config{Region: "us-east-1", Endpoint: "http://localhost:9000", AccessKeyID: "k", SecretAccessKey: "s", UsePathStyle: true})
	if s.client == nil {
		t.Fatal("NewS3 client is nil")
	}
}
