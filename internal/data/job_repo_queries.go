package data

// Column list shared by every job query. Order must match the Job struct
// db tags for pgx row collection.
const jobColumns = `
  id,
  ref,
  company_id,
  created_by,
  pickup_location,
  pickup_at,
  delivery_location,
  delivery_at,
  cargo_type,
  load_details,
  special_requirements,
  weight_kg,
  driver_id,
  vehicle_id,
  status,
  status_history,
  collection_photo,
  delivery_photos,
  signature_data,
  signature_name,
  dispute_reason,
  driver_notes,
  created_at,
  updated_at
`

// References come from a dedicated sequence so they are dense, ordered,
// and human-readable. UUIDs stay the storage key.
const jobInsertQuery = `
  INSERT INTO jobs (
    id,
    ref,
    company_id,
    created_by,
    pickup_location,
    pickup_at,
    delivery_location,
    delivery_at,
    cargo_type,
    load_details,
    special_requirements,
    weight_kg,
    driver_id,
    vehicle_id,
    status,
    status_history,
    created_at,
    updated_at
  ) VALUES (
    $1,
    'XD-' || lpad(nextval('jobs_ref_seq')::text, 6, '0'),
    $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb, $16, $16
  ) RETURNING ` + jobColumns

// Tenant filtering happens in every query. $-numbered implicit flags
// disable the company clause for the single-tenant local deployment
// path; the remote store always passes implicit=false.
const jobGetQuery = `
  SELECT ` + jobColumns + `
  FROM jobs
  WHERE id = $1 AND ($2 OR company_id = $3)`

const jobListQuery = `
  SELECT ` + jobColumns + `
  FROM jobs
  WHERE ($1 OR company_id = $2)
    AND ($3 = '' OR status = $3)
    AND ($4 = '' OR driver_id = $4)
  ORDER BY created_at DESC, ref DESC
  LIMIT $5 OFFSET $6`

// The conditional transition is one statement: the status guard, the
// history append, and the evidence writes all commit or none do. Zero
// rows means the guard failed; the caller re-probes to tell a lost race
// from a missing row.
const jobCompareAndSetQuery = `
  UPDATE jobs SET
    status           = $1,
    status_history   = status_history || $2::jsonb,
    driver_id        = COALESCE($3, driver_id),
    collection_photo = COALESCE($4, collection_photo),
    delivery_photos  = CASE WHEN $5::text[] IS NULL THEN delivery_photos ELSE $5 END,
    signature_data   = COALESCE($6, signature_data),
    signature_name   = COALESCE($7, signature_name),
    dispute_reason   = COALESCE($8, dispute_reason),
    updated_at       = $9
  WHERE id = $10
    AND status = $11
    AND ($12 OR company_id = $13)
  RETURNING ` + jobColumns

const jobUpdateNotesQuery = `
  UPDATE jobs SET
    driver_notes = $1,
    updated_at   = $2
  WHERE id = $3 AND ($4 OR company_id = $5)
  RETURNING ` + jobColumns

const jobCountByStatusQuery = `
  SELECT status, count(*) AS n
  FROM jobs
  WHERE ($1 OR company_id = $2)
  GROUP BY status`
