// Package rag holds the retrieval side of the system: the boundary-aware
// text splitter, the in-memory similarity index built per ingestion, and
// the answer engine that runs one of the basic / multi_query / hyde
// retrieval strategies over an index.
package rag
