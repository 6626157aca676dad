// Package graph implements the structured query side of hybrid search on
// top of Neo4j.
//
// A validated filter is compiled into a single deterministic Cypher query
// (CompileFilter), executed in a read transaction (Executor), and mapped
// back into exact, unranked matches. Writing doubles into the graph during
// ingestion is handled by Writer.
//
// Membership is boolean: a double either satisfies the whole conjunction or
// it is absent from the result. Ranking happens later, in the merge step.
package graph
