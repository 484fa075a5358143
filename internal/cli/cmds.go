package cli

func regCommands() {
	//Keys
	keyCmd.AddCommand(key_generateCmd)
	keyCmd.AddCommand(key_listCmd)

	//Root
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(derefCmd)
}
