package mongodb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// toDoc round-trips v through its bson tags so mock responses match what
// the repositories decode.
func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()

	raw, err := bson.Marshal(v)
	require.NoError(t, err)

	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func findAndModifyResponse(doc interface{}) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: doc}}
}
