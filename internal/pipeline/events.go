package pipeline

import "fmt"

// Progress messages shown to listeners. The wording is the Uzbek UI text the
// product has always used; callers must not localize or rewrite these.
const (
	msgResolving        = "API orqali ma`lumot olinmoqda..."
	msgNoVideoID        = "Videoning ID sini ajratib olib bo'lmadi"
	msgDownloading      = "Ovoz yuklanmoqda..."
	msgProbing          = "Ovoz davomiyligi aniqlanmoqda..."
	msgTranscribeStart  = "Matnga o'girish boshlandi"
	msgNoSegmentsDone   = "Matn qismlarini o'girib bo'lmadi."
	msgAssembling       = "Matn tayyorlanmoqda..."
	msgCombined         = "Text jamlandi!"
	msgGeneralErrPrefix = "Umumiy xatolik yuz berdi"
)

func msgResolveFailed(detail string) string {
	return fmt.Sprintf("API dan ma'lumot olishda xatolik: %s", detail)
}

func msgDownloadFailed(detail string) string {
	return fmt.Sprintf("Audio faylni yuklashda xatolik: %s", detail)
}

func msgProbeFailed(detail string) string {
	return fmt.Sprintf("Audio davomiyligini aniqlab bo'lmadi: %s", detail)
}

func msgSegmentCount(count int) string {
	return fmt.Sprintf("Ovoz %d qismga bo'linmoqda", count)
}

func msgEngineAWorking(number, total int) string {
	return fmt.Sprintf("Google matnni o'girmoqda %d/%d", number, total)
}

func msgEngineAFailed(number, total int) string {
	return fmt.Sprintf("Google matnni o'girishda xatolik (%d/%d)! Qayta urinilmoqda...", number, total)
}

func msgEngineBWorking(number, total int) string {
	return fmt.Sprintf("Elevenlabs matnni o'girmoqda %d/%d", number, total)
}

func msgEngineBEmpty(number, total int) string {
	return fmt.Sprintf("%d/%d-chi elevenlabs matnida xatolik yoki bo'sh javob! Qayta urinilmoqda...", number, total)
}

func msgEngineBFailed(number, total int) string {
	return fmt.Sprintf("Elevenlabs matnni o'girishda xatolik (%d/%d)! Qayta urinilmoqda...", number, total)
}

func msgEditing(number, total int) string {
	return fmt.Sprintf("Matnni Gemini tahrirlamoqda %d/%d...", number, total)
}

func msgEditFailed(number, total int) string {
	return fmt.Sprintf("Gemini tahririda xatolik (%d/%d)! Qayta urinilmoqda...", number, total)
}

func msgSegmentReady(number, total int) string {
	return fmt.Sprintf("%d/%d-chi matn tayyor! Ovoz o'chirilmoqda...", number, total)
}

func msgGeneralError(detail string) string {
	return fmt.Sprintf("%s: %s", msgGeneralErrPrefix, detail)
}
