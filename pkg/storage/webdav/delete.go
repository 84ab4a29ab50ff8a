package webdav

func (w *WebDAV) Delete(fileKey string) error {
	return w.Client.Remove(w.resolve(fileKey))
}
