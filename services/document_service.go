package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/federgolf/referee-system/config"
	"github.com/federgolf/referee-system/letters"
	"github.com/federgolf/referee-system/models"
)

// Artifact — сгенерированный документ на диске.
type Artifact struct {
	Path     string `json:"-"`
	Filename string `json:"filename"`
	Type     string `json:"type"` // convocation | club_letter
}

// DocumentService собирает DOCX-документы уведомления из фирменных бланков:
// письмо-созыв для арбитров и сопроводительное письмо для клуба.
type DocumentService interface {
	GenerateConvocation(ctx context.Context, tournament *models.Tournament, clauses map[string]string) (*Artifact, error)
	GenerateClubDocument(ctx context.Context, tournament *models.Tournament, clauses map[string]string) (*Artifact, error)
	// GetZoneFolder возвращает код папки зоны в хранилище документов.
	GetZoneFolder(tournament *models.Tournament) string
	ResolveTemplate(folderCode string) (string, error)
}

type documentService struct {
	cfg *config.Config
}

func NewDocumentService(cfg *config.Config) DocumentService {
	return &documentService{cfg: cfg}
}

// GetZoneFolder: национальные турниры идут в папку CRC, зональные — в папку
// своей зоны, турниры без определимой зоны — в SZR0.
func (s *documentService) GetZoneFolder(tournament *models.Tournament) string {
	if tournament.EffectiveNational() {
		return s.cfg.NationalFolderCode
	}
	if tournament.Zone != nil {
		return tournament.Zone.FolderCodeOrDefault()
	}
	if zoneID := tournament.ZoneID(); zoneID != nil {
		return fmt.Sprintf("SZR%d", *zoneID)
	}
	return "SZR0"
}

// ResolveTemplate ищет бланк папки (letterhead_crc.docx, letterhead_szr3.docx
// и т.п.), при отсутствии откатывается на letterhead_default.docx.
func (s *documentService) ResolveTemplate(folderCode string) (string, error) {
	specific := filepath.Join(s.cfg.TemplatesDir, "letterhead_"+strings.ToLower(folderCode)+".docx")
	if fileExists(specific) {
		return specific, nil
	}

	fallback := filepath.Join(s.cfg.TemplatesDir, "letterhead_default.docx")
	if fileExists(fallback) {
		return fallback, nil
	}
	return "", fmt.Errorf("%w: no letterhead for folder %s and no default", ErrTemplateNotFound, folderCode)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FormatDateRange форматирует период турнира по соглашениям федерации:
// один день — «15/06/2025», диапазон в одном месяце — «15-17/06/2025»,
// через границу месяца — «28/06/2025 - 02/07/2025».
func FormatDateRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.Month() == end.Month() {
		if start.Day() == end.Day() {
			return start.Format("02/01/2006")
		}
		return fmt.Sprintf("%02d-%s", start.Day(), end.Format("02/01/2006"))
	}
	return start.Format("02/01/2006") + " - " + end.Format("02/01/2006")
}

// TranslateRole переводит роль назначения в итальянское наименование для
// документов. Неизвестные роли проходят без изменений.
func TranslateRole(role models.AssignmentRole) string {
	switch strings.ToLower(strings.TrimSpace(string(role))) {
	case "director", "tournament director", "direttore di torneo":
		return string(models.RoleDirector)
	case "referee", "arbitro":
		return string(models.RoleReferee)
	case "observer", "osservatore":
		return string(models.RoleObserver)
	case "assistant", "assistente":
		return string(models.RoleAssistant)
	default:
		return string(role)
	}
}

func (s *documentService) GenerateConvocation(ctx context.Context, tournament *models.Tournament, clauses map[string]string) (*Artifact, error) {
	return s.generate(ctx, tournament, clauses, "convocazione")
}

func (s *documentService) GenerateClubDocument(ctx context.Context, tournament *models.Tournament, clauses map[string]string) (*Artifact, error) {
	return s.generate(ctx, tournament, clauses, "lettera_circolo")
}

func (s *documentService) generate(ctx context.Context, tournament *models.Tournament, clauses map[string]string, prefix string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder := s.GetZoneFolder(tournament)
	templatePath, err := s.ResolveTemplate(folder)
	if err != nil {
		return nil, err
	}

	tp, err := letters.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentAssembly, err)
	}

	s.fillCommonValues(tp, tournament)
	if err := s.fillRoster(tp, tournament.Assignments); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentAssembly, err)
	}
	s.applyClauses(tp, clauses)

	filename := documentFilename(prefix, tournament)
	outPath := filepath.Join(s.cfg.OutputDir, folder, filename)

	if err := tp.Save(outPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentAssembly, err)
	}
	if err := letters.VerifyArchive(outPath); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: %v", ErrDocumentAssembly, err)
	}

	artifactType := "convocation"
	if prefix == "lettera_circolo" {
		artifactType = "club_letter"
	}
	return &Artifact{Path: outPath, Filename: filename, Type: artifactType}, nil
}

func (s *documentService) fillCommonValues(tp *letters.TemplateProcessor, tournament *models.Tournament) {
	clubName := ""
	zoneName := ""
	if tournament.Club != nil {
		clubName = tournament.Club.Name
	}
	if tournament.Zone != nil {
		zoneName = tournament.Zone.Name
	}

	tp.SetValue("tournament_name", tournament.Name)
	tp.SetValue("tournament_dates", FormatDateRange(tournament.StartDate, tournament.EndDate))
	tp.SetValue("club_name", clubName)
	tp.SetValue("zone_name", zoneName)
	tp.SetValue("current_date", time.Now().Format("02/01/2006"))
}

// fillRoster клонирует строку состава по числу назначений. Турнир без
// назначений — допустимый случай: строка-шаблон просто удаляется.
func (s *documentService) fillRoster(tp *letters.TemplateProcessor, assignments []models.Assignment) error {
	if !tp.HasPlaceholder("referee_name") {
		return nil
	}

	sorted := models.SortAssignmentsByRole(assignments)
	if err := tp.CloneRow("referee_name", len(sorted)); err != nil {
		return err
	}

	for i, a := range sorted {
		idx := i + 1
		name := ""
		code := ""
		level := ""
		if a.Referee != nil {
			name = a.Referee.FullName()
			if a.Referee.RefereeCode != nil {
				code = *a.Referee.RefereeCode
			}
			level = string(a.Referee.Level)
		}
		tp.SetValue(fmt.Sprintf("referee_name#%d", idx), name)
		tp.SetValue(fmt.Sprintf("referee_role#%d", idx), TranslateRole(a.Role))
		tp.SetValue(fmt.Sprintf("referee_code#%d", idx), code)
		tp.SetValue(fmt.Sprintf("referee_level#%d", idx), level)
	}
	return nil
}

// applyClauses подставляет тексты выбранных клаузул и раскрывает либо удаляет
// их условные блоки. Плейсхолдеры без выбора вычищаются из документа.
func (s *documentService) applyClauses(tp *letters.TemplateProcessor, clauses map[string]string) {
	for _, code := range ClausePlaceholders {
		content, selected := clauses[code]
		if selected {
			tp.KeepBlock("BLOCCO_" + code)
			tp.SetValue(code, content)
		} else {
			tp.DeleteBlock("BLOCCO_" + code)
			tp.SetValue(code, "")
		}
	}
}

func documentFilename(prefix string, tournament *models.Tournament) string {
	return fmt.Sprintf("%s_%d_%s_%s.docx",
		prefix, tournament.ID, slugify(tournament.Name), time.Now().Format("20060102_150405"))
}

// slugify приводит название турнира к безопасному фрагменту имени файла.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
