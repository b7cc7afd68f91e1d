package postgres

// schema документы всех коллекций в одной таблице; value хранится как jsonb
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT        NOT NULL,
    id         TEXT        NOT NULL,
    value      JSONB       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`
