/*
Package filesystem wraps the file operations the catalog depends on.

# Retries

StatWithRetry, OpenWithRetry and RemoveWithRetry retry only on ESTALE
(stale NFS file handle), with exponential backoff:

  - MaxRetries: 3
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Every other error is returned immediately.

# Volumes

A VolumeResolver maps paths to the labels "watched", "previews" and
"catalog" so metrics can be split by mount. The metrics package installs
an Observer with SetObserver at startup; without one nothing is recorded.

# Durable writes

WriteFileAtomic writes through a temporary file in the target directory
followed by fsync and rename. CopyFile never overwrites its destination and
preserves the source modification time.
*/
package filesystem
