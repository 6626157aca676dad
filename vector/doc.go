// Package vector implements the semantic query side of hybrid search on top
// of Qdrant.
//
// Free text is embedded through ai.Embedder and searched against a cosine
// similarity collection of double descriptions. Results carry normalized
// scores in [0, 1] and are approximate by nature; exact membership is the
// structured side's job.
package vector
