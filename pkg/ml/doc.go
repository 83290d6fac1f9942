// Package ml runs inference over pretrained glycan models: graph
// embeddings, property prediction, lectin-binding scoring, and
// nearest-neighbor search over stored embeddings.
//
// Models are plain JSON weight files, so inference needs no runtime
// beyond the process itself. Training is out of scope.
package ml
