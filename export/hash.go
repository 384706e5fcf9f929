package export

import (
	"strconv"

	"github.com/minio/highwayhash"
)

var graphIDKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// GraphID derives a stable, non-cryptographic identifier for one export
// run from the project id and the serialized node/edge count, so repeated
// exports of an unchanged project produce the same id.
func GraphID(projectID string, nodeCount, edgeCount int) (string, error) {
	h, err := highwayhash.New64(graphIDKey)
	if err != nil {
		return "", err
	}
	seed := projectID + ":" + strconv.Itoa(nodeCount) + ":" + strconv.Itoa(edgeCount)
	if _, err := h.Write([]byte(seed)); err != nil {
		return "", err
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
