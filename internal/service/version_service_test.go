package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/YanGranat/ukhvat-notes-sub000/internal/domain"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
	"github.com/YanGranat/ukhvat-notes-sub000/pkg/diff"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeVersionRepo 内存版本仓库，自增ID
type fakeVersionRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.Version

	failCreate bool
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{items: map[int64]*domain.Version{}}
}

func (r *fakeVersionRepo) GetByID(_ context.Context, id int64) (*domain.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *v
	return &out, nil
}

func (r *fakeVersionRepo) GetLatestByNoteID(ctx context.Context, noteID int64) (*domain.Version, error) {
	list, err := r.ListByNoteID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return list[0], nil
}

func (r *fakeVersionRepo) Create(_ context.Context, version *domain.Version) (*domain.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return nil, errors.New("simulated create failure")
	}
	r.nextID++
	v := *version
	v.ID = r.nextID
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	stored := v
	r.items[v.ID] = &stored
	return &v, nil
}

func (r *fakeVersionRepo) ListByNoteID(_ context.Context, noteID int64) ([]*domain.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*domain.Version
	for _, v := range r.items {
		if v.NoteID == noteID {
			out := *v
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *fakeVersionRepo) CountRegularByNoteID(_ context.Context, noteID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.items {
		if v.NoteID == noteID && !v.IsNamed() {
			n++
		}
	}
	return n, nil
}

func (r *fakeVersionRepo) ListRegularBeyond(_ context.Context, noteID int64, keep int) ([]*domain.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var regular []*domain.Version
	for _, v := range r.items {
		if v.NoteID == noteID && !v.IsNamed() {
			out := *v
			regular = append(regular, &out)
		}
	}
	sort.Slice(regular, func(i, j int) bool {
		if !regular[i].CreatedAt.Equal(regular[j].CreatedAt) {
			return regular[i].CreatedAt.Before(regular[j].CreatedAt)
		}
		return regular[i].ID < regular[j].ID
	})
	if len(regular) <= keep {
		return nil, nil
	}
	return regular[:len(regular)-keep], nil
}

func (r *fakeVersionRepo) UpdateCustomName(_ context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.CustomName = name
	return nil
}

func (r *fakeVersionRepo) UpdateAIMetadata(_ context.Context, id int64, provider, model string, durationMs int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.AIProvider = provider
	v.AIModel = model
	v.AIDurationMs = durationMs
	return nil
}

func (r *fakeVersionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeVersionRepo) DeleteAllByNoteID(_ context.Context, noteID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, v := range r.items {
		if v.NoteID == noteID {
			delete(r.items, id)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeVersionRepo) ListNoteIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[int64]bool{}
	var ids []int64
	for _, v := range r.items {
		if !seen[v.NoteID] {
			seen[v.NoteID] = true
			ids = append(ids, v.NoteID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeVersionRepo) setDiffOps(id int64, raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].DiffOpsJSON = raw
}

var _ domain.VersionRepository = (*fakeVersionRepo)(nil)

// fakeNoteRepo 内存笔记仓库
type fakeNoteRepo struct {
	mu    sync.Mutex
	items map[int64]*domain.Note

	failUpdateContent bool
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{items: map[int64]*domain.Note{}}
}

func (r *fakeNoteRepo) GetByID(_ context.Context, id int64) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *n
	return &out, nil
}

func (r *fakeNoteRepo) Create(_ context.Context, note *domain.Note) (*domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *note
	r.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeNoteRepo) UpdateContent(_ context.Context, id int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateContent {
		return errors.New("simulated update failure")
	}
	n, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Content = content
	n.UpdatedAt = time.Now()
	return nil
}

func (r *fakeNoteRepo) UpdateSnapshot(_ context.Context, id int64, snapshot, snapshotHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.VersionSnapshot = snapshot
	n.SnapshotHash = snapshotHash
	n.LastVersionAt = time.Now()
	return nil
}

func (r *fakeNoteRepo) ListIDs(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakeNoteRepo) setContent(id int64, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].Content = content
}

var _ domain.NoteRepository = (*fakeNoteRepo)(nil)

func seedNote(r *fakeNoteRepo, id int64, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = &domain.Note{
		ID:        id,
		Title:     fmt.Sprintf("заметка %d", id),
		Content:   content,
		CreatedAt: time.Now().Add(-24 * time.Hour),
		UpdatedAt: time.Now(),
	}
}

func seedVersion(t *testing.T, r *fakeVersionRepo, noteID int64, content, customName string, createdAt time.Time) *domain.Version {
	t.Helper()
	v, err := r.Create(context.Background(), &domain.Version{
		NoteID:     noteID,
		Content:    content,
		CustomName: customName,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return v
}

func testServiceConfig() *VersioningServiceConfig {
	return &VersioningServiceConfig{
		Enabled:            true,
		SaveIntervalMs:     60000,
		MinChangeChars:     5,
		MaxRegularVersions: 10,
	}
}

func TestVersionService_RecordEdit_FirstVersionUnconditional(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 1, "первая запись")

	require.NoError(t, svc.RecordEdit(ctx, 1))

	list, err := vr.ListByNoteID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ChangeInitialCreate, list[0].ChangeDescription)
	assert.Equal(t, "первая запись", list[0].Content)
	assert.NotEmpty(t, list[0].ContentHash)

	note, err := nr.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "первая запись", note.VersionSnapshot)
	assert.True(t, note.HasVersionBaseline())

	// Второй вызов без изменений не создаёт версию
	require.NoError(t, svc.RecordEdit(ctx, 1))
	list, err = vr.ListByNoteID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestVersionService_RecordEdit_RetentionGate(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name          string
		snapshot      string
		content       string
		lastVersionAt time.Time
		wantCreated   bool
	}{
		{
			name:          "unchanged content",
			snapshot:      "тот же текст",
			content:       "тот же текст",
			lastVersionAt: time.Now().Add(-time.Hour),
			wantCreated:   false,
		},
		{
			name:          "interval not elapsed",
			snapshot:      "старый план",
			content:       "старый план и очень много новых правок",
			lastVersionAt: time.Now(),
			wantCreated:   false,
		},
		{
			name:          "too few changed chars",
			snapshot:      "основа",
			content:       "основа!",
			lastVersionAt: time.Now().Add(-time.Hour),
			wantCreated:   false,
		},
		{
			name:          "enough change and elapsed time",
			snapshot:      "основа",
			content:       "основа и ещё много нового текста",
			lastVersionAt: time.Now().Add(-time.Hour),
			wantCreated:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
			svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

			nr.items[1] = &domain.Note{
				ID:              1,
				Content:         tc.content,
				VersionSnapshot: tc.snapshot,
				LastVersionAt:   tc.lastVersionAt,
			}

			require.NoError(t, svc.RecordEdit(ctx, 1))

			list, err := vr.ListByNoteID(ctx, 1)
			require.NoError(t, err)
			if !tc.wantCreated {
				assert.Empty(t, list)
				return
			}
			require.Len(t, list, 1)
			assert.Equal(t, domain.ChangeAutosave, list[0].ChangeDescription)
			assert.Equal(t, tc.content, list[0].Content)
			assert.Equal(t, diff.ChangedChars(tc.snapshot, tc.content), list[0].ChangedChars)
		})
	}
}

func TestVersionService_RecordEdit_Disabled(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), &VersioningServiceConfig{Enabled: false})

	seedNote(nr, 1, "что угодно")

	require.NoError(t, svc.RecordEdit(ctx, 1))
	list, err := vr.ListByNoteID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestVersionService_RecordEdit_MissingNote(t *testing.T) {
	svc := NewVersionService(newFakeVersionRepo(), newFakeNoteRepo(), nil, zap.NewNop(), testServiceConfig())

	err := svc.RecordEdit(context.Background(), 404)
	assert.ErrorIs(t, err, code.ErrorNoteNotFound)
}

func TestVersionService_RecordEdit_StorageFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	vr.failCreate = true
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	nr.items[1] = &domain.Note{
		ID:              1,
		Content:         "основа и ещё много нового текста",
		VersionSnapshot: "основа",
		LastVersionAt:   time.Now().Add(-time.Hour),
	}

	require.NoError(t, svc.RecordEdit(ctx, 1))

	// Первый снимок тоже не должен пробрасывать ошибку хранилища
	seedNote(nr, 2, "без базовой версии")
	require.NoError(t, svc.RecordEdit(ctx, 2))
}

func TestVersionService_ForceSave_BypassesGate(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	// Содержимое совпадает со снимком, интервал не выдержан: обычный
	// автосейв был бы отклонён по всем трём условиям
	nr.items[1] = &domain.Note{
		ID:              1,
		Content:         "зафиксировать сейчас",
		VersionSnapshot: "зафиксировать сейчас",
		LastVersionAt:   time.Now(),
	}

	v, err := svc.ForceSave(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, domain.ChangeForcedSave, v.ChangeDescription)
	assert.Equal(t, "зафиксировать сейчас", v.Content)
	assert.NotZero(t, v.ID)

	// Для заметки без базовой версии принудительное сохранение и есть первый снимок
	seedNote(nr, 2, "новая заметка")
	first, err := svc.ForceSave(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeInitialCreate, first.ChangeDescription)
}

func TestVersionService_Rollback(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 7, "редакция первая")
	v1, err := svc.ForceSave(ctx, 7)
	require.NoError(t, err)

	nr.setContent(7, "редакция вторая, переработанная")

	res, err := svc.Rollback(ctx, 7, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.NoteID)
	assert.Equal(t, v1.ID, res.SourceVersionID)
	assert.NotZero(t, res.BackupVersionID)
	assert.NotZero(t, res.RollbackVersionID)
	assert.Equal(t, len([]rune("редакция первая")), res.RestoredChars)

	note, err := nr.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "редакция первая", note.Content)
	assert.Equal(t, "редакция первая", note.VersionSnapshot)

	backup, err := vr.GetByID(ctx, res.BackupVersionID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChangeRollbackBackup, backup.ChangeDescription)
	assert.Equal(t, "редакция вторая, переработанная", backup.Content)

	rb, err := vr.GetByID(ctx, res.RollbackVersionID)
	require.NoError(t, err)
	assert.Equal(t, domain.RollbackChangeDescription(v1.ID), rb.ChangeDescription)
	assert.Equal(t, "редакция первая", rb.Content)

	list, err := vr.ListByNoteID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestVersionService_Rollback_VersionFromAnotherNote(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 1, "содержимое первой")
	seedNote(nr, 2, "содержимое второй")
	v, err := svc.ForceSave(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Rollback(ctx, 2, v.ID)
	assert.ErrorIs(t, err, code.ErrorVersionNoteMismatch)

	_, err = svc.Rollback(ctx, 1, 404)
	assert.ErrorIs(t, err, code.ErrorVersionNotFound)
}

func TestVersionService_Rollback_RestoreFailureKeepsBackup(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 3, "исходный текст")
	v1, err := svc.ForceSave(ctx, 3)
	require.NoError(t, err)

	nr.setContent(3, "текущий текст")
	nr.failUpdateContent = true

	_, err = svc.Rollback(ctx, 3, v1.ID)
	assert.ErrorIs(t, err, code.ErrorRollbackFailed)

	// Заметка не тронута, резервная копия сохранена
	note, err := nr.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "текущий текст", note.Content)

	list, err := vr.ListByNoteID(ctx, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ChangeRollbackBackup, list[0].ChangeDescription)
	assert.Equal(t, "текущий текст", list[0].Content)
}

func TestVersionService_List_SimilarityAgainstPredecessor(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	base := time.Now().Add(-time.Hour)
	v1 := seedVersion(t, vr, 3, "общий текст заметки", "", base)
	v2 := seedVersion(t, vr, 3, "общий текст заметки", "", base.Add(time.Minute))
	v3 := seedVersion(t, vr, 3, "совсем другое содержимое", "", base.Add(2*time.Minute))

	items, err := svc.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, v3.ID, items[0].ID)
	assert.Equal(t, v2.ID, items[1].ID)
	assert.Equal(t, v1.ID, items[2].ID)

	// Самая старая версия предшественника не имеет
	assert.Equal(t, float64(-1), items[2].Similarity)
	// Идентичное содержимое
	assert.InDelta(t, 1.0, items[1].Similarity, 1e-9)
	// Совпадает с прямым вычислением
	assert.InDelta(t, diff.Similarity("общий текст заметки", "совсем другое содержимое"), items[0].Similarity, 1e-9)
}

func TestVersionService_List_Empty(t *testing.T) {
	svc := NewVersionService(newFakeVersionRepo(), newFakeNoteRepo(), nil, zap.NewNop(), testServiceConfig())

	items, err := svc.List(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVersionService_DiffAgainstNeighbors(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	base := time.Now().Add(-time.Hour)
	v1 := seedVersion(t, vr, 5, "абв", "", base)
	v2 := seedVersion(t, vr, 5, "абвг", "", base.Add(time.Minute))
	v3 := seedVersion(t, vr, 5, "бвг", "", base.Add(2*time.Minute))

	res, err := svc.DiffAgainstNeighbors(ctx, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, res.VersionID)
	assert.Equal(t, v1.ID, res.PrevVersionID)
	assert.Equal(t, v3.ID, res.NextVersionID)
	require.Len(t, res.Spans, len([]rune("абвг")))

	prev, next := "абв", "бвг"
	want := diff.DiffAgainstNeighbors("абвг", &prev, &next)
	assert.Equal(t, want, res.Spans)
	assert.Equal(t, 1, res.AddedChars)
	assert.Equal(t, 1, res.RemovedChars)

	// Крайние версии: у старейшей нет предыдущей, у новейшей нет следующей
	oldest, err := svc.DiffAgainstNeighbors(ctx, v1.ID)
	require.NoError(t, err)
	assert.Zero(t, oldest.PrevVersionID)
	assert.Equal(t, v2.ID, oldest.NextVersionID)

	newest, err := svc.DiffAgainstNeighbors(ctx, v3.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, newest.PrevVersionID)
	assert.Zero(t, newest.NextVersionID)

	_, err = svc.DiffAgainstNeighbors(ctx, 404)
	assert.ErrorIs(t, err, code.ErrorVersionNotFound)
}

func TestVersionService_EditOps(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 6, "список покупок")
	v1, err := svc.ForceSave(ctx, 6)
	require.NoError(t, err)

	nr.setContent(6, "список покупок\nмолоко")
	v2, err := svc.ForceSave(ctx, 6)
	require.NoError(t, err)

	// Первая версия: операции относительно пустого предшественника
	ops, err := svc.EditOps(ctx, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, diff.ComputeEditOps("", "список покупок"), ops)

	// Предвычисленные операции совпадают с пересчётом
	ops, err = svc.EditOps(ctx, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, diff.ComputeEditOps("список покупок", "список покупок\nмолоко"), ops)

	// Повреждённый предвычисленный результат ведёт к пересчёту
	vr.setDiffOps(v2.ID, "{broken json")
	ops, err = svc.EditOps(ctx, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, diff.ComputeEditOps("список покупок", "список покупок\nмолоко"), ops)
}

func TestVersionService_RenameAndAIMetadata(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	v := seedVersion(t, vr, 1, "черновик", "", time.Now())

	require.NoError(t, svc.Rename(ctx, v.ID, "до больших правок"))
	got, err := vr.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "до больших правок", got.CustomName)
	assert.True(t, got.IsNamed())

	require.NoError(t, svc.SetAIMetadata(ctx, v.ID, "anthropic", "claude-sonnet", 2300))
	got, err = vr.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", got.AIProvider)
	assert.Equal(t, "claude-sonnet", got.AIModel)
	assert.Equal(t, int64(2300), got.AIDurationMs)
	assert.True(t, got.HasAIMetadata())

	assert.ErrorIs(t, svc.Rename(ctx, 404, "нет такой"), code.ErrorVersionNotFound)
	assert.ErrorIs(t, svc.SetAIMetadata(ctx, 404, "p", "m", 1), code.ErrorVersionNotFound)
}

func TestVersionService_DeleteAllForNote(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	base := time.Now().Add(-time.Hour)
	seedVersion(t, vr, 5, "раз", "", base)
	seedVersion(t, vr, 5, "два", "важная", base.Add(time.Minute))
	seedVersion(t, vr, 5, "три", "", base.Add(2*time.Minute))
	other := seedVersion(t, vr, 6, "чужая заметка", "", base)

	require.NoError(t, svc.DeleteAllForNote(ctx, 5))

	list, err := vr.ListByNoteID(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Соседняя заметка не затронута
	_, err = vr.GetByID(ctx, other.ID)
	assert.NoError(t, err)
}

func TestVersionService_CleanupNow(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	base := time.Now().Add(-time.Hour)
	var regularIDs []int64
	for i := 0; i < 8; i++ {
		v := seedVersion(t, vr, 9, fmt.Sprintf("версия %d", i), "", base.Add(time.Duration(i)*time.Minute))
		regularIDs = append(regularIDs, v.ID)
	}
	named1 := seedVersion(t, vr, 9, "важное состояние", "веха", base.Add(30*time.Second))
	named2 := seedVersion(t, vr, 9, "ещё одно", "релиз", base.Add(10*time.Minute))

	removed, err := svc.CleanupNow(ctx, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	// Остались три новейшие обычные версии
	for _, id := range regularIDs[:5] {
		_, err := vr.GetByID(ctx, id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}
	for _, id := range regularIDs[5:] {
		_, err := vr.GetByID(ctx, id)
		assert.NoError(t, err)
	}

	// Именованные версии не участвуют в вытеснении
	_, err = vr.GetByID(ctx, named1.ID)
	assert.NoError(t, err)
	_, err = vr.GetByID(ctx, named2.ID)
	assert.NoError(t, err)

	// Повторный запуск ничего не удаляет
	removed, err = svc.CleanupNow(ctx, 9, 3)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = svc.CleanupNow(ctx, 9, -1)
	assert.ErrorIs(t, err, code.ErrorInvalidParams)
}

func TestVersionService_CapEvictionOnCreate(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	seedNote(nr, 4, "начальное содержимое")
	for i := 0; i < 13; i++ {
		nr.setContent(4, fmt.Sprintf("содержимое номер %d", i))
		_, err := svc.ForceSave(ctx, 4)
		require.NoError(t, err)
	}

	count, err := vr.CountRegularByNoteID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	// Вытеснение шло с самых старых
	for id := int64(1); id <= 3; id++ {
		_, err := vr.GetByID(ctx, id)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	}
}

func TestVersionService_NoteIDs(t *testing.T) {
	ctx := context.Background()
	vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
	svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

	base := time.Now()
	seedVersion(t, vr, 2, "а", "", base)
	seedVersion(t, vr, 2, "б", "", base.Add(time.Second))
	seedVersion(t, vr, 8, "в", "", base)

	ids, err := svc.NoteIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 8}, ids)
}

func TestVersionEditPushNeverBlocks(t *testing.T) {
	drain := func() {
		for {
			select {
			case <-VersionEditChannel:
			default:
				return
			}
		}
	}
	drain()
	defer drain()

	VersionEditPush(42)
	select {
	case msg := <-VersionEditChannel:
		assert.Equal(t, int64(42), msg.NoteID)
	default:
		t.Fatal("event was not delivered")
	}

	// Переполненный канал молча отбрасывает событие
	for i := 0; i < cap(VersionEditChannel); i++ {
		VersionEditPush(int64(i))
	}
	done := make(chan struct{})
	go func() {
		VersionEditPush(999)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("push blocked on a full channel")
	}
}

func TestVersionService_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("rollback always restores the exact version content", prop.ForAll(
		func(first, second string) bool {
			ctx := context.Background()
			vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
			svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

			seedNote(nr, 1, first)
			v, err := svc.ForceSave(ctx, 1)
			if err != nil {
				return false
			}
			nr.setContent(1, second)

			res, err := svc.Rollback(ctx, 1, v.ID)
			if err != nil || res.BackupVersionID == 0 {
				return false
			}
			note, err := nr.GetByID(ctx, 1)
			if err != nil {
				return false
			}
			backup, err := vr.GetByID(ctx, res.BackupVersionID)
			if err != nil {
				return false
			}
			return note.Content == first && backup.Content == second
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("eviction never removes named versions", prop.ForAll(
		func(namedFlags []bool) bool {
			ctx := context.Background()
			vr, nr := newFakeVersionRepo(), newFakeNoteRepo()
			svc := NewVersionService(vr, nr, nil, zap.NewNop(), testServiceConfig())

			// 淘汰只看命名与年龄，与版本来源无关
			origins := []string{
				domain.ChangeAutosave,
				domain.ChangeInitialCreate,
				domain.ChangeForcedSave,
				domain.ChangeRollbackBackup,
				domain.ChangeImported,
			}

			base := time.Now().Add(-time.Hour)
			named, regular := 0, 0
			for i, isNamed := range namedFlags {
				customName := ""
				if isNamed {
					customName = fmt.Sprintf("метка %d", i)
					named++
				} else {
					regular++
				}
				if _, err := vr.Create(ctx, &domain.Version{
					NoteID:            1,
					Content:           fmt.Sprintf("состояние %d", i),
					CustomName:        customName,
					ChangeDescription: origins[i%len(origins)],
					CreatedAt:         base.Add(time.Duration(i) * time.Second),
				}); err != nil {
					return false
				}
			}

			if _, err := svc.CleanupExcessFor(ctx, 1); err != nil {
				return false
			}

			list, err := vr.ListByNoteID(ctx, 1)
			if err != nil {
				return false
			}
			namedLeft, regularLeft := 0, 0
			for _, v := range list {
				if v.IsNamed() {
					namedLeft++
				} else {
					regularLeft++
				}
			}
			wantRegular := regular
			if wantRegular > 10 {
				wantRegular = 10
			}
			return namedLeft == named && regularLeft == wantRegular
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
