package services

import (
	"testing"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.Grain{},
		&models.Guest{},
		&models.Feedback{},
		&models.Task{},
		&models.Resource{},
		&models.UserFavorite{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func uintPtr(v uint) *uint { return &v }

func TestResolveAuthor_UserWinsOverGuest(t *testing.T) {
	f := models.Feedback{
		UserID:  uintPtr(1),
		User:    &models.User{Prenom: "Marie", Nom: "Dupont"},
		GuestID: uintPtr(2),
		Guest:   &models.Guest{Prenom: "Paul", Nom: "Martin"},
	}

	author := ResolveAuthor(&f)
	if author.Kind != AuthorKindUser {
		t.Errorf("expected user author, got %s", author.Kind)
	}
	if author.Name != "Marie Dupont" {
		t.Errorf("expected 'Marie Dupont', got %q", author.Name)
	}
}

func TestResolveAuthor_GuestProfile(t *testing.T) {
	f := models.Feedback{
		GuestID: uintPtr(7),
		Guest: &models.Guest{
			Prenom:     "Paul",
			Nom:        "Martin",
			Poste:      "Chef de projet",
			Device:     models.DeviceMobile,
			Navigateur: models.BrowserFirefox,
		},
	}

	author := ResolveAuthor(&f)
	if author.Kind != AuthorKindGuest || author.ID != 7 {
		t.Errorf("unexpected author identity: %+v", author)
	}
	if author.Name != "Paul Martin" {
		t.Errorf("expected 'Paul Martin', got %q", author.Name)
	}
	if author.Poste != "Chef de projet" {
		t.Errorf("expected poste to carry over, got %q", author.Poste)
	}
	if author.Device != models.DeviceMobile || author.Navigateur != models.BrowserFirefox {
		t.Errorf("expected device/browser to carry over, got %+v", author)
	}
}

func TestResolveAuthor_AnonymousFallbacks(t *testing.T) {
	cases := []struct {
		name string
		f    models.Feedback
	}{
		{"no identity at all", models.Feedback{}},
		{"user id without loaded user", models.Feedback{UserID: uintPtr(3)}},
		{"guest id without loaded guest", models.Feedback{GuestID: uintPtr(4)}},
		{"user with empty name parts", models.Feedback{UserID: uintPtr(3), User: &models.User{Prenom: "Marie"}}},
		{"guest with empty name parts", models.Feedback{GuestID: uintPtr(4), Guest: &models.Guest{Nom: "Martin"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			author := ResolveAuthor(&tc.f)
			if author.Name != AnonymousName {
				t.Errorf("expected %q, got %q", AnonymousName, author.Name)
			}
		})
	}
}

func TestDeviceIcon(t *testing.T) {
	cases := []struct {
		device string
		want   string
	}{
		{models.DeviceMobile, models.DeviceMobile},
		{models.DeviceTablette, models.DeviceTablette},
		{models.DeviceOrdinateur, models.DeviceOrdinateur},
		{"", models.DeviceOrdinateur},
		{"smartwatch", models.DeviceOrdinateur},
	}
	for _, tc := range cases {
		if got := DeviceIcon(tc.device); got.Name != tc.want {
			t.Errorf("DeviceIcon(%q) = %q, want %q", tc.device, got.Name, tc.want)
		}
	}
}

func TestBrowserIcon(t *testing.T) {
	cases := []struct {
		navigateur string
		want       string
	}{
		{models.BrowserChrome, models.BrowserChrome},
		{models.BrowserSafari, models.BrowserSafari},
		{"", models.BrowserAutre},
		{"netscape", models.BrowserAutre},
	}
	for _, tc := range cases {
		if got := BrowserIcon(tc.navigateur); got.Name != tc.want {
			t.Errorf("BrowserIcon(%q) = %q, want %q", tc.navigateur, got.Name, tc.want)
		}
	}
}

func TestCollectAuthors_FirstAppearanceDedupe(t *testing.T) {
	feedbacks := []models.Feedback{
		{GuestID: uintPtr(1), Guest: &models.Guest{Prenom: "Paul", Nom: "Martin"}},
		{UserID: uintPtr(1), User: &models.User{Prenom: "Marie", Nom: "Dupont"}},
		{GuestID: uintPtr(1), Guest: &models.Guest{Prenom: "Paul", Nom: "Martin"}},
		{},
		{GuestID: uintPtr(2), Guest: &models.Guest{Prenom: "Luc", Nom: "Petit"}},
	}

	authors := CollectAuthors(feedbacks)
	if len(authors) != 3 {
		t.Fatalf("expected 3 distinct authors, got %d", len(authors))
	}
	if authors[0].Kind != AuthorKindGuest || authors[0].ID != 1 {
		t.Errorf("expected guest 1 first, got %+v", authors[0])
	}
	if authors[1].Kind != AuthorKindUser || authors[1].ID != 1 {
		t.Errorf("expected user 1 second, got %+v", authors[1])
	}
	if authors[2].Kind != AuthorKindGuest || authors[2].ID != 2 {
		t.Errorf("expected guest 2 third, got %+v", authors[2])
	}
}

func TestCollectAuthors_SameIDDifferentKind(t *testing.T) {
	feedbacks := []models.Feedback{
		{UserID: uintPtr(5), User: &models.User{Prenom: "Marie", Nom: "Dupont"}},
		{GuestID: uintPtr(5), Guest: &models.Guest{Prenom: "Paul", Nom: "Martin"}},
	}
	authors := CollectAuthors(feedbacks)
	if len(authors) != 2 {
		t.Errorf("user 5 and guest 5 are distinct authors, got %d entries", len(authors))
	}
}

func filterFixture() []models.Feedback {
	return []models.Feedback{
		{GrainID: 1, Done: false, UserID: uintPtr(1), User: &models.User{Prenom: "Marie", Nom: "Dupont"}},
		{GrainID: 1, Done: true, GuestID: uintPtr(1), Guest: &models.Guest{Prenom: "Paul", Nom: "Martin"}},
		{GrainID: 2, Done: false, GuestID: uintPtr(1), Guest: &models.Guest{Prenom: "Paul", Nom: "Martin"}},
		{GrainID: 2, Done: true, UserID: uintPtr(1), User: &models.User{Prenom: "Marie", Nom: "Dupont"}},
	}
}

func TestApplyFilter_Wildcards(t *testing.T) {
	got := ApplyFilter(filterFixture(), FeedbackFilter{})
	if len(got) != 4 {
		t.Errorf("empty filter should pass everything, got %d", len(got))
	}
	got = ApplyFilter(filterFixture(), FeedbackFilter{GrainID: FilterAll, Status: FilterAll, AuthorID: FilterAll})
	if len(got) != 4 {
		t.Errorf("explicit 'all' filter should pass everything, got %d", len(got))
	}
}

func TestApplyFilter_SingleDimensions(t *testing.T) {
	if got := ApplyFilter(filterFixture(), FeedbackFilter{GrainID: "1"}); len(got) != 2 {
		t.Errorf("grain filter: expected 2, got %d", len(got))
	}
	if got := ApplyFilter(filterFixture(), FeedbackFilter{Status: FilterStatusDone}); len(got) != 2 {
		t.Errorf("status filter: expected 2, got %d", len(got))
	}
	if got := ApplyFilter(filterFixture(), FeedbackFilter{AuthorKind: "guest", AuthorID: "1"}); len(got) != 2 {
		t.Errorf("author filter: expected 2, got %d", len(got))
	}
}

func TestApplyFilter_CombinedCanMatchNothing(t *testing.T) {
	filter := FeedbackFilter{GrainID: "1", Status: FilterStatusDone, AuthorKind: "user", AuthorID: "1"}
	if got := ApplyFilter(filterFixture(), filter); len(got) != 0 {
		t.Errorf("contradictory combination should match nothing, got %d", len(got))
	}
}

func TestApplyFilter_PreservesOrder(t *testing.T) {
	got := ApplyFilter(filterFixture(), FeedbackFilter{GrainID: "2"})
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Done || !got[1].Done {
		t.Error("filter must preserve input order")
	}
}

func feedbackFixtures(t *testing.T, db *gorm.DB) (models.Project, models.Grain, models.Guest) {
	t.Helper()
	owner := models.User{Username: "owner", Prenom: "Marie", Nom: "Dupont", Role: "user"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}
	project := models.Project{Title: "Refonte intranet", Active: true, UserID: owner.ID, CreatedBy: owner.Username}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	grain := models.Grain{Title: "Page accueil", Type: models.GrainTypeWeb, URL: "https://example.com", ProjectID: project.ID, RetourOn: true}
	if err := db.Create(&grain).Error; err != nil {
		t.Fatalf("create grain: %v", err)
	}
	guest := models.Guest{Prenom: "Paul", Nom: "Martin", Device: models.DeviceOrdinateur, Navigateur: models.BrowserChrome, ProjectID: project.ID}
	if err := db.Create(&guest).Error; err != nil {
		t.Fatalf("create guest: %v", err)
	}
	return project, grain, guest
}

func TestFeedbackCreate_GuestAuthorship(t *testing.T) {
	db := setupTestDB(t)
	_, grain, guest := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	fb, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "Le logo est trop petit"}, 0, guest.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if fb.GuestID == nil || *fb.GuestID != guest.ID {
		t.Error("expected guest authorship")
	}
	if fb.UserID != nil {
		t.Error("guest feedback must not carry a user id")
	}
	if ResolveDisplayName(fb) != "Paul Martin" {
		t.Errorf("expected resolved guest name, got %q", ResolveDisplayName(fb))
	}
}

func TestFeedbackCreate_NoIdentityRejected(t *testing.T) {
	db := setupTestDB(t)
	_, grain, _ := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	_, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "anonyme?"}, 0, 0)
	appErr, ok := err.(*response.AppError)
	if !ok || appErr.Code != 401 {
		t.Errorf("expected 401 for identity-less create, got %v", err)
	}
}

func TestFeedbackCreate_GuestFromOtherProjectRejected(t *testing.T) {
	db := setupTestDB(t)
	_, grain, _ := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	other := models.Project{Title: "Autre projet", Active: true, UserID: 99}
	db.Create(&other)
	stranger := models.Guest{Prenom: "Luc", Nom: "Petit", ProjectID: other.ID}
	db.Create(&stranger)

	_, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "intrus"}, 0, stranger.ID)
	appErr, ok := err.(*response.AppError)
	if !ok || appErr.Code != 403 {
		t.Errorf("expected 403 for cross-project guest, got %v", err)
	}
}

func TestFeedbackCreate_RetourOffBlocksNonOwner(t *testing.T) {
	db := setupTestDB(t)
	project, grain, guest := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	db.Model(&models.Grain{}).Where("id = ?", grain.ID).Update("retour_on", false)

	_, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "trop tard"}, 0, guest.ID)
	appErr, ok := err.(*response.AppError)
	if !ok || appErr.Code != 403 {
		t.Errorf("expected 403 when collection is closed, got %v", err)
	}

	// The project owner still can
	if _, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "note interne"}, project.UserID, 0); err != nil {
		t.Errorf("owner should bypass retour_on, got %v", err)
	}
}

func TestFeedbackCreate_TimecodeOnlyOnVideo(t *testing.T) {
	db := setupTestDB(t)
	project, grain, guest := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	tc := 12.5
	_, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "à 12s", Timecode: &tc}, 0, guest.ID)
	appErr, ok := err.(*response.AppError)
	if !ok || appErr.Code != 422 {
		t.Errorf("expected 422 for timecode on a web grain, got %v", err)
	}

	video := models.Grain{Title: "Teaser", Type: models.GrainTypeVideo, URL: "https://example.com/v.mp4", ProjectID: project.ID, RetourOn: true}
	db.Create(&video)
	fb, err := svc.Create(&CreateFeedbackRequest{GrainID: video.ID, Content: "à 12s", Timecode: &tc}, 0, guest.ID)
	if err != nil {
		t.Fatalf("create on video: %v", err)
	}
	if fb.Timecode == nil || *fb.Timecode != 12.5 {
		t.Error("expected timecode persisted on video feedback")
	}
}

func TestFeedbackDelete_GuestOnlyOwn(t *testing.T) {
	db := setupTestDB(t)
	_, grain, guest := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	fb, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "à supprimer"}, 0, guest.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := models.Guest{Prenom: "Luc", Nom: "Petit", ProjectID: grain.ProjectID}
	db.Create(&other)

	if err := svc.Delete(fb.ID, 0, other.ID); err == nil {
		t.Error("another guest must not delete the feedback")
	}
	if err := svc.Delete(fb.ID, 0, guest.ID); err != nil {
		t.Errorf("author guest delete: %v", err)
	}
}

func TestFeedbackUpdate_OwnerCanResolve(t *testing.T) {
	db := setupTestDB(t)
	project, grain, guest := feedbackFixtures(t, db)
	svc := NewFeedbackService(db, newTestStorage(t))

	fb, err := svc.Create(&CreateFeedbackRequest{GrainID: grain.ID, Content: "bug menu"}, 0, guest.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetDone(fb.ID, true, project.UserID, 0)
	if err != nil {
		t.Fatalf("owner set done: %v", err)
	}
	if !updated.Done {
		t.Error("expected done=true after resolution")
	}

	// Done feedback stays in the collection
	all, err := svc.ListByProject(project.ID, FeedbackFilter{})
	if err != nil || len(all) != 1 {
		t.Errorf("done feedback must remain listed, got %d (%v)", len(all), err)
	}
}
