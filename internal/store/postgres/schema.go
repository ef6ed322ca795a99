package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS executions (
    internal_id BIGSERIAL PRIMARY KEY,
    arn         TEXT NOT NULL UNIQUE,
    status      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_status ON executions (status);

CREATE TABLE IF NOT EXISTS granules (
    internal_id         BIGSERIAL PRIMARY KEY,
    granule_id          TEXT NOT NULL,
    collection_id       BIGINT NOT NULL,
    status              TEXT NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL,
    timestamp           TIMESTAMPTZ NOT NULL,
    published           BOOLEAN NOT NULL DEFAULT FALSE,
    duration            DOUBLE PRECISION,
    product_volume      BIGINT,
    error               JSONB,
    cmr_link            TEXT,
    provider            TEXT,
    beginning_date_time TIMESTAMPTZ,
    ending_date_time    TIMESTAMPTZ,
    UNIQUE (granule_id, collection_id)
);
CREATE INDEX IF NOT EXISTS idx_granules_status ON granules (status);
CREATE INDEX IF NOT EXISTS idx_granules_collection ON granules (collection_id);

CREATE TABLE IF NOT EXISTS granules_executions (
    granule_internal_id   BIGINT NOT NULL REFERENCES granules (internal_id) ON DELETE CASCADE,
    execution_internal_id BIGINT NOT NULL REFERENCES executions (internal_id) ON DELETE CASCADE,
    PRIMARY KEY (granule_internal_id, execution_internal_id)
);
CREATE INDEX IF NOT EXISTS idx_granules_executions_execution
    ON granules_executions (execution_internal_id);
`
