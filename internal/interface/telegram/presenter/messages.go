// Package presenter renders the bot's Indonesian UI strings from plain
// domain data. Formatting lives here so handlers stay free of text.
package presenter

import (
	"fmt"
	"strings"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// LANGUAGE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// LanguageInfo is the display form of a supported language.
type LanguageInfo struct {
	Code session.Language
	Name string
	Flag string
}

// Languages lists the supported languages in menu order.
var Languages = []LanguageInfo{
	{session.LanguageEnglish, "English (Inggris)", "🇬🇧"},
	{session.LanguageSpanish, "Spanish (Español)", "🇪🇸"},
	{session.LanguageFrench, "French (Français)", "🇫🇷"},
	{session.LanguageGerman, "German (Deutsch)", "🇩🇪"},
	{session.LanguageJapanese, "Japanese (日本語)", "🇯🇵"},
	{session.LanguageItalian, "Italian (Italiano)", "🇮🇹"},
	{session.LanguagePortuguese, "Portuguese (Português)", "🇵🇹"},
	{session.LanguageMandarin, "Mandarin Chinese (中文)", "🇨🇳"},
	{session.LanguageKorean, "Korean (한국어)", "🇰🇷"},
	{session.LanguageArabic, "Arabic (العربية)", "🇸🇦"},
}

// LanguageByCode resolves a language's display info.
func LanguageByCode(code session.Language) (LanguageInfo, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return LanguageInfo{}, false
}

func languageLabel(code session.Language) string {
	if info, ok := LanguageByCode(code); ok {
		return info.Flag + " " + info.Name
	}
	return string(code)
}

var levelNames = map[session.ProficiencyLevel]string{
	session.LevelBeginner:     "🟢 Pemula",
	session.LevelIntermediate: "🔵 Menengah",
	session.LevelAdvanced:     "🟣 Mahir",
}

var modeNames = map[session.Mode]string{
	session.ModeCasual:     "💬 Santai",
	session.ModeStructured: "📚 Terstruktur",
}

// ══════════════════════════════════════════════════════════════════════════════
// STATIC MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// Welcome is the /start greeting.
const Welcome = `👋 *Selamat datang di Language Learning Tutor!*

🌍 Belajar bahasa melalui percakapan interaktif
⚡ Powered by AI tutor yang cepat dan sabar

Gunakan perintah berikut:
/bahasa - Pilih bahasa
/mode - Ubah mode pembelajaran
/level - Lihat level kemampuan
/progres - Lihat progres
/target - Lihat target pembelajaran
/streak - Lihat streak harian
/quiz - Latihan kosakata
/latihan - Kata yang perlu diulang
/top - Papan peringkat
/pengingat - Pengingat latihan harian
/reset - Reset percakapan
/bantuan - Panduan lengkap

Mulai dengan mengetik pesan dalam bahasa yang ingin Anda pelajari! 🚀`

// Help is the /bantuan text.
const Help = `📚 *Panduan Penggunaan*

1️⃣ *Pilih Bahasa*: Gunakan /bahasa untuk memilih bahasa target
2️⃣ *Mulai Percakapan*: Ketik pesan dalam bahasa yang dipilih
3️⃣ *Dapatkan Feedback*: AI akan merespons dan memberikan tips
4️⃣ *Track Progress*: Gunakan /progres untuk melihat perkembangan
5️⃣ *Latihan Kosakata*: Gunakan /quiz untuk menguji kata yang sudah dipelajari

💡 *Tips:*
- Mode Santai: Percakapan natural sehari-hari
- Mode Terstruktur: Fokus pada grammar dan vocabulary
- Saat quiz berlangsung, ketik "lewati" untuk membatalkan
- Reset percakapan dengan /reset jika ingin mulai topik baru`

// ChooseLanguage is the /bahasa menu title.
const ChooseLanguage = "🌍 *Pilih bahasa yang ingin Anda pelajari:*"

// ChooseMode is the /mode menu title.
const ChooseMode = "📖 *Pilih mode pembelajaran:*"

// TutorError is shown when the AI tutor call fails.
const TutorError = `❌ Maaf, terjadi kesalahan saat menghubungi tutor. Silakan coba lagi.

Pesan Anda tetap tersimpan dalam percakapan.`

// GenericError is shown on unexpected internal failures.
const GenericError = "❌ Terjadi kesalahan. Silakan coba lagi atau gunakan /reset"

// NoVocabulary is shown when a quiz cannot start.
const NoVocabulary = `📭 Belum ada kosakata untuk dilatih.

Mulai percakapan terlebih dahulu, kata-kata baru akan tercatat otomatis!`

// QuizSkipped confirms a quiz was abandoned.
const QuizSkipped = "⏭️ Quiz dibatalkan. Tidak ada penalti, lanjutkan percakapan!"

// ══════════════════════════════════════════════════════════════════════════════
// RENDERED MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// LanguageChosen confirms a language switch.
func LanguageChosen(code session.Language) string {
	info, _ := LanguageByCode(code)
	return fmt.Sprintf("✅ Bahasa dipilih: %s *%s*\n\nMulai percakapan dalam %s! Ketik pesan Anda.",
		info.Flag, info.Name, info.Name)
}

// ModeChosen confirms a mode switch.
func ModeChosen(mode session.Mode) string {
	desc := "Percakapan natural untuk latihan sehari-hari"
	if mode == session.ModeStructured {
		desc = "Pembelajaran terstruktur dengan fokus grammar dan vocabulary"
	}
	return fmt.Sprintf("✅ Mode pembelajaran: *%s*\n\n%s", modeNames[mode], desc)
}

// Level renders the /level view.
func Level(s *session.Session) string {
	return fmt.Sprintf("📊 *Level Kemampuan Anda:*\n\n*%s*\n\nLevel akan diupdate otomatis berdasarkan percakapan Anda.",
		levelNames[s.ProficiencyLevel])
}

// Progress renders the /progres view.
func Progress(s *session.Session) string {
	return fmt.Sprintf(`📈 *Progres Pembelajaran:*

🌍 Bahasa: %s
📝 Kata Baru: *%d*
🏆 Kata Dikuasai: *%d*
✅ Skor Grammar: *%d%%*
💬 Total Pesan: *%d*
🔥 Streak: *%d hari*
⭐ Poin: *%d*

Terus berlatih untuk meningkatkan skor Anda! 🚀`,
		languageLabel(s.Language),
		s.Progress.VocabularyCount,
		s.MasteredCount(),
		s.Progress.GrammarScore,
		s.Progress.MessagesCount,
		s.Progress.Streak,
		s.Progress.Points)
}

// Streak renders the /streak view.
func Streak(s *session.Session) string {
	if s.Progress.Streak == 0 {
		return "🔥 Belum ada streak. Kirim pesan hari ini untuk memulai!"
	}
	return fmt.Sprintf("🔥 Streak Anda: *%d hari* berturut-turut!\n\nLatihan setiap hari agar streak tidak terputus.", s.Progress.Streak)
}

// Goals renders the /target view.
func Goals(s *session.Session) string {
	var b strings.Builder
	for i, goal := range s.Goals {
		fmt.Fprintf(&b, "%d. %s\n", i+1, goal)
	}
	return fmt.Sprintf("🎯 *Target Pembelajaran:*\n\n%sPercakapan akan disesuaikan dengan target Anda.", b.String())
}

// ConversationReset confirms a /reset.
func ConversationReset(code session.Language) string {
	info, _ := LanguageByCode(code)
	return fmt.Sprintf("🔄 *Percakapan di-reset!*\n\nMulai percakapan baru dalam %s", info.Name)
}

// RateLimited tells the user how long to wait.
func RateLimited(waitSeconds int) string {
	return fmt.Sprintf("⏳ Anda mengirim pesan terlalu cepat. Coba lagi dalam *%d detik* ya!", waitSeconds)
}

// TutorReply renders the tutor's reply with optional feedback.
func TutorReply(reply, feedback string) string {
	if feedback == "" {
		return reply
	}
	return fmt.Sprintf("%s\n\n💡 *Feedback:* %s", reply, feedback)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// QuizQuestion renders a quiz question.
func QuizQuestion(q *session.QuizQuestion) string {
	return fmt.Sprintf("❓ %s\n\n_Ketik jawaban Anda, atau \"lewati\" untuk membatalkan._", q.Question)
}

// QuizStarted renders the quiz intro with the first question.
func QuizStarted(q *session.QuizQuestion) string {
	return "📝 *Quiz dimulai!*\n\n" + QuizQuestion(q)
}

// QuizAnswer renders the outcome of one quiz answer.
func QuizAnswer(r *session.AnswerResult) string {
	var b strings.Builder

	if r.Correct {
		fmt.Fprintf(&b, "✅ Benar! +%d poin\n", session.PointsPerCorrectAnswer)
		if r.Mastered {
			fmt.Fprintf(&b, "🏆 Kata %q sudah Anda kuasai!\n", r.Word)
		}
	} else {
		fmt.Fprintf(&b, "❌ Belum tepat, coba lagi!\n")
	}

	switch {
	case r.QuizComplete:
		fmt.Fprintf(&b, "\n🎉 *Quiz selesai!* Bonus +%d poin!", session.QuizCompletionBonus)
	case r.NextQuestion != nil:
		fmt.Fprintf(&b, "\n%s", QuizQuestion(r.NextQuestion))
	}

	return b.String()
}

// ReviewWords renders the /latihan view.
func ReviewWords(words []session.VocabularyItem) string {
	if len(words) == 0 {
		return "🎉 Tidak ada kata yang perlu diulang. Semua kosakata terkendali!"
	}

	var b strings.Builder
	b.WriteString("📖 *Kata yang perlu diulang:*\n\n")
	for i, w := range words {
		fmt.Fprintf(&b, "%d. *%s* (diulang %d kali)\n", i+1, w.Word, w.ReviewCount)
	}
	b.WriteString("\nGunakan /quiz untuk melatihnya!")
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD & REMINDERS
// ══════════════════════════════════════════════════════════════════════════════

var medals = []string{"🥇", "🥈", "🥉"}

// Leaderboard renders the /top view. names maps user IDs to display names;
// missing entries fall back to a masked identifier.
func Leaderboard(entries []leaderboard.Entry, names map[string]string) string {
	if len(entries) == 0 {
		return "📭 Papan peringkat masih kosong. Jadilah yang pertama!"
	}

	var b strings.Builder
	b.WriteString("🏆 *Papan Peringkat Global:*\n\n")
	for i, e := range entries {
		marker := fmt.Sprintf("%d.", e.Rank)
		if i < len(medals) {
			marker = medals[i]
		}
		name := names[e.UserID]
		if name == "" {
			name = session.UserID(e.UserID).Masked()
		}
		fmt.Fprintf(&b, "%s %s: *%d poin*\n", marker, name, e.Score)
	}
	return b.String()
}

// MyRank renders the caller's own position.
func MyRank(e *leaderboard.Entry) string {
	return fmt.Sprintf("\nPeringkat Anda: *#%d* dengan *%d poin*", e.Rank, e.Score)
}

// ReminderToggled confirms the /pengingat switch.
func ReminderToggled(enabled bool, at string) string {
	if enabled {
		return fmt.Sprintf("🔔 Pengingat harian *aktif* (sekitar pukul %s UTC). Gunakan /pengingat untuk mematikan.", at)
	}
	return "🔕 Pengingat harian *nonaktif*. Gunakan /pengingat untuk mengaktifkan kembali."
}

// Reminder is the scheduled daily nudge.
func Reminder(dueWords int) string {
	return fmt.Sprintf("⏰ Waktunya latihan! Ada *%d kata* menunggu untuk diulang. Gunakan /quiz untuk mulai. 💪", dueWords)
}
