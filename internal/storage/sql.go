package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    device      TEXT     NOT NULL,
    sync_mode   TEXT     NOT NULL,
    policy      TEXT     NOT NULL,
    sample_rate REAL     NOT NULL,
    block_size  INTEGER  NOT NULL,
    config      TEXT
);

CREATE TABLE IF NOT EXISTS skew_results (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   INTEGER NOT NULL REFERENCES sessions (id),
    block_index  INTEGER NOT NULL,
    dsa_samples  INTEGER NOT NULL,
    mio_samples  INTEGER NOT NULL,
    detected     INTEGER NOT NULL,
    frequency_hz REAL,
    skew_degrees REAL,
    skew_seconds REAL
);

CREATE INDEX IF NOT EXISTS idx_skew_results_session
    ON skew_results (session_id, block_index);
`

const (
	insertSessionSQL = `
INSERT INTO sessions (device,
                      sync_mode,
                      policy,
                      sample_rate,
                      block_size,
                      config)
VALUES (?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    device,
    sync_mode,
    policy,
    sample_rate,
    block_size,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    device,
    sync_mode,
    policy,
    sample_rate,
    block_size,
    config
FROM sessions
ORDER BY start_time, id`

	insertResultSQL = `
INSERT INTO skew_results (session_id,
                          block_index,
                          dsa_samples,
                          mio_samples,
                          detected,
                          frequency_hz,
                          skew_degrees,
                          skew_seconds)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectResultsSQL = `
SELECT
    block_index,
    dsa_samples,
    mio_samples,
    detected,
    frequency_hz,
    skew_degrees,
    skew_seconds
FROM skew_results
WHERE
    session_id = ?
ORDER BY block_index`
)
