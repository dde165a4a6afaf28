package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/iliyamo/content-hub/internal/apperr"
	"github.com/iliyamo/content-hub/internal/config"
)

// GridFS stores blobs in a MongoDB GridFS bucket. Content type and digest
// are kept in the file metadata.
type GridFS struct {
	client *mongo.Client
	db     *mongo.Database
	bucket *mongo.GridFSBucket
	name   string
}

// OpenGridFS connects to MongoDB, pings it and provisions the bucket
// indexes so the first upload does not pay for them.
func OpenGridFS(ctx context.Context, mc config.MediaConfig) (*GridFS, error) {
	c, err := mongo.Connect(options.Client().ApplyURI(mc.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := c.Ping(ctx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	db := c.Database(mc.MongoDB)
	g := &GridFS{
		client: c,
		db:     db,
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(mc.Bucket)),
		name:   mc.Bucket,
	}
	if err := g.ensureIndexes(ctx); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return g, nil
}

func (g *GridFS) ensureIndexes(ctx context.Context) error {
	files := mongo.IndexModel{Keys: bson.D{{Key: "filename", Value: 1}, {Key: "uploadDate", Value: 1}}}
	if _, err := g.db.Collection(g.name+".files").Indexes().CreateOne(ctx, files); err != nil {
		return fmt.Errorf("create files index: %w", err)
	}
	chunks := mongo.IndexModel{
		Keys:    bson.D{{Key: "files_id", Value: 1}, {Key: "n", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := g.db.Collection(g.name+".chunks").Indexes().CreateOne(ctx, chunks); err != nil {
		return fmt.Errorf("create chunks index: %w", err)
	}
	return nil
}

func (g *GridFS) Put(ctx context.Context, name, contentType string, data []byte) (Object, error) {
	digest := Digest(data)
	meta := bson.D{{Key: "contentType", Value: contentType}, {Key: "digest", Value: digest}}
	if _, err := g.bucket.UploadFromStream(ctx, name, bytes.NewReader(data), options.GridFSUpload().SetMetadata(meta)); err != nil {
		return Object{}, apperr.Storage("gridfs upload "+name, err)
	}
	return Object{Name: name, ContentType: contentType, Size: int64(len(data)), Digest: digest}, nil
}

func (g *GridFS) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	ds, err := g.bucket.OpenDownloadStreamByName(ctx, name)
	if errors.Is(err, mongo.ErrFileNotFound) {
		return nil, Object{}, notFound(name)
	}
	if err != nil {
		return nil, Object{}, apperr.Storage("gridfs open "+name, err)
	}
	f := ds.GetFile()
	obj := Object{Name: f.Name, Size: f.Length, UploadedAt: f.UploadDate}
	if f.Metadata != nil {
		obj.ContentType, _ = f.Metadata.Lookup("contentType").StringValueOK()
		obj.Digest, _ = f.Metadata.Lookup("digest").StringValueOK()
	}
	if obj.ContentType == "" {
		obj.ContentType = "application/octet-stream"
	}
	return ds, obj, nil
}

// Close disconnects the MongoDB client.
func (g *GridFS) Close(ctx context.Context) error { return g.client.Disconnect(ctx) }
