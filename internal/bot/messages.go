package bot

// Handler-emitted user messages.
const (
	msgRequestContact         = "👋 Привет! Чтобы подтвердить результаты, поделитесь своим контактом кнопкой ниже."
	msgContactMismatch        = "⚠️ Это не ваш контакт. Пожалуйста, отправьте свой контакт кнопкой ниже."
	msgFindStudentID          = "🔎 Найдите свой ID ученика в личном кабинете (пример на картинке) и пришлите его сообщением."
	msgUnknownStudentID       = "⚠️ Такой ID не найден. Проверьте и пришлите ещё раз."
	msgSendScreenshot         = "📸 Теперь пришлите скриншот с результатами ЕГЭ из личного кабинета."
	msgSendPlatformScreenshot = "📸 Пришлите скриншот вашего отзыва на внешней площадке."
	msgScreenshotReceived     = "🔍 Получили скрин! Проверяем…"
	msgDownloadFailed         = "⚠️ Не получилось скачать файл. Пришлите ещё раз."
	msgReviewSaved            = "✅ Скриншот отзыва сохранён. Спасибо!"
	msgFeedbackSaved          = "✅ Отзыв сохранён. Спасибо!"
	msgFeedbackSaveFailed     = "⚠️ Не удалось сохранить отзыв. Попробуйте ещё раз."
	msgEditPrompt             = "Если нужно что-то поменять, выберите опцию:"
	msgAlreadyVerified        = "✅ Вы уже подтверждены. Пришлите текст или видео с отзывом, либо выберите опцию редактирования."

	btnShareContact = "📱 Поделиться контактом"
	btnEditScores   = "✏️ Редактировать баллы"
	btnEditReview   = "✏️ Редактировать отзыв"
)
