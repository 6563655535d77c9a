package sqlinline

const QEnsureGenerationSchema = `--sql 6b0f4e2a-93d1-4c8e-a5f7-1e2d3c4b5a69
create table if not exists video_generations (
  operation_name text primary key,
  request_id     text not null default '',
  model          text not null,
  aspect_ratio   text not null,
  creative_style text not null,
  video_length   int  not null default 0,
  has_audio      boolean not null default false,
  has_image      boolean not null default false,
  prompt_sha256  text not null,
  status         text not null default 'PENDING',
  error_message  text,
  poll_count     int  not null default 0,
  created_at     timestamptz not null default now(),
  updated_at     timestamptz not null default now()
);
create table if not exists video_downloads (
  id              uuid primary key,
  request_id      text not null default '',
  upstream_status int  not null,
  content_type    text not null default '',
  bytes           bigint not null default 0,
  streamed        boolean not null default true,
  created_at      timestamptz not null default now()
);
`

const QInsertGeneration = `--sql 2c9d7a41-58be-4f0b-8e6d-a4c1f3b29e07
insert into video_generations(operation_name, request_id, model, aspect_ratio, creative_style, video_length, has_audio, has_image, prompt_sha256)
values ($1::text, $2::text, $3::text, $4::text, $5::text, $6::int, $7::boolean, $8::boolean, $9::text)
on conflict (operation_name) do nothing;
`

const QUpdateGenerationStatus = `--sql d81e5c3f-0a27-4b96-b4e8-7f6a5d2c1e93
update video_generations
set status = $2::text,
    error_message = coalesce($3::text, error_message),
    poll_count = poll_count + 1,
    updated_at = now()
where operation_name = $1::text
returning poll_count;
`

const QInsertDownload = `--sql 94a3b6e8-1f2c-4d7e-9b05-c8e7d6f5a4b3
insert into video_downloads(id, request_id, upstream_status, content_type, bytes, streamed)
values ($1::uuid, $2::text, $3::int, $4::text, $5::bigint, $6::boolean);
`
