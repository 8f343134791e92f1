package memory

// SchemaSQL initializes the memory table. The HNSW dimension must match the
// embedder's vector dimension.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS geo_memory SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS content ON geo_memory TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON geo_memory TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS filepath ON geo_memory TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS modified ON geo_memory TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS metadata ON geo_memory FLEXIBLE TYPE option<object>;
    DEFINE FIELD IF NOT EXISTS created ON geo_memory TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS geo_memory_filepath ON geo_memory FIELDS filepath;
    DEFINE INDEX IF NOT EXISTS geo_memory_embedding ON geo_memory FIELDS embedding HNSW DIMENSION 384 DIST COSINE TYPE F32;
`
